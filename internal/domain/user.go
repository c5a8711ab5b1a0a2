package domain

import "time"

// Role enumerates authorization roles.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
)

// Toggle returns the opposite role.
func (r Role) Toggle() Role {
	if r == RoleManager {
		return RoleEmployee
	}
	return RoleManager
}

// User is the domain model for accounts that submit or review tickets.
type User struct {
	UserID       string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
