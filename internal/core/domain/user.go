package domain

import (
	"errors"
	"time"
)

// Role is the coarse-grained capability attached to a user.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleSeller Role = "SELLER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleSeller
}

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrSellerRequired = errors.New("seller role required")

// User models an account in the marketplace. ID and Role are immutable after
// creation; only profile fields and the password hash may change.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
