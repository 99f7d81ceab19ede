package accounts

import (
	"errors"
	"time"
)

// Errors returned by account operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNotFound           = errors.New("account not found")
)

// Roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Account is a dashboard user without its password hash.
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitzero"`
}

// CreateAccountRequest is the input for creating an account.
type CreateAccountRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}
