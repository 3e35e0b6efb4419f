package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a store account. PasswordHash is a bcrypt hash and never leaves
// the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CreateUserParams carries the fields for a new account. PasswordHash must
// already be hashed.
type CreateUserParams struct {
	Email        string
	Name         string
	Role         string
	PasswordHash string
}

// UserStore is the account persistence boundary.
type UserStore interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}
