package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a staff role
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleWaiter  Role = "mesero"
	RoleCashier Role = "cajero"
	RoleKitchen Role = "cocina"
)

// User represents a staff member who can sign in
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin returns whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasRole returns whether the user holds any of the given roles
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required,nospaces" example:"admin"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// LoginResponse represents the response to a successful login
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        Role      `json:"role"`
}

// CreateUserRequest represents an admin creating a staff account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,nospaces,max=50" example:"mesero1"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
	Role     Role   `json:"role" binding:"required,oneof=admin mesero cajero cocina" example:"mesero"`
}
