package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ericlong128/reimbursement-service/internal/api/dto"
	"github.com/ericlong128/reimbursement-service/internal/auth"
	"github.com/ericlong128/reimbursement-service/internal/domain"
	"github.com/ericlong128/reimbursement-service/internal/service"
	apperrors "github.com/ericlong128/reimbursement-service/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Register handles POST /users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Username and password are required.", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("Username and password are required.", nil)
	}

	user, err := h.users.Register(c.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User created",
		"user":    userResponse(user),
	})
}

// Login handles POST /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Username and password are required.", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("Username and password are required.", nil)
	}

	_, token, exp, err := h.users.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// UpdatePassword handles PUT /users/password. The target username must match
// the session identity; the body carries the new password.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request.", nil)
	}
	if req.Username == "" || req.Password == "" || req.Username != principal.Username {
		return apperrors.NewValidationError("Invalid request.", nil)
	}

	user, err := h.users.UpdatePassword(c.Context(), principal.UserID, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Password updated for user: " + user.UserID,
		"user":    userResponse(user),
	})
}

// UpdateRole handles PUT /users/role, toggling EMPLOYEE and MANAGER.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request.", nil)
	}
	if req.Username == "" {
		return apperrors.NewValidationError("Invalid request.", nil)
	}

	user, err := h.users.ToggleRole(c.Context(), principal.Role, req.Username)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Role updated for user: " + user.UserID,
		"user":    userResponse(user),
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     user.Role,
	}
}
