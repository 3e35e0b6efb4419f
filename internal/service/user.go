package service

import (
	"context"
	"strings"

	"inventorypro/internal/auth"
	"inventorypro/internal/domain"
)

// UserService handles account registration and credential checks.
type UserService struct {
	users domain.UserStore
}

// NewUserService creates a UserService over the account store.
func NewUserService(users domain.UserStore) *UserService {
	return &UserService{users: users}
}

// Register creates an account with a hashed password.
func (s *UserService) Register(ctx context.Context, email, password, name, role string) (*domain.User, error) {
	const op = "users.register"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.Invalid(op, "email is required")
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		return nil, domain.Invalid(op, "role must be admin or staff")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			return nil, domain.Invalid(op, err.Error())
		}
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	return s.users.CreateUser(ctx, domain.CreateUserParams{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	})
}

// Authenticate verifies credentials and returns the account. Unknown email
// and wrong password return the same EUNAUTHORIZED error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "users.authenticate"

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, domain.Unauthorized(op, "invalid email or password")
		}
		return nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, domain.Unauthorized(op, "invalid email or password")
	}
	return user, nil
}
