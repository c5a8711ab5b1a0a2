package dto

import (
	"time"

	"github.com/ericlong128/reimbursement-service/internal/domain"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdatePasswordRequest payload; password is the new credential.
type UpdatePasswordRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateRoleRequest payload for the role toggle.
type UpdateRoleRequest struct {
	Username string `json:"username"`
}

// UserResponse is the external account shape; the credential never leaves.
type UserResponse struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
