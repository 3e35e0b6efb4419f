// Package bootstrap performs first-run setup tasks.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"inventorypro/internal"
	"inventorypro/internal/auth"
	"inventorypro/internal/domain"
)

// EnsureAdminUser creates the initial admin account from config on first
// startup. A missing ADMIN_EMAIL skips the step; an existing account wins.
func EnsureAdminUser(ctx context.Context, users domain.UserStore, cfg internal.AdminConfig, logger *slog.Logger) error {
	if cfg.Email == "" {
		logger.Debug("no admin email configured, skipping admin bootstrap")
		return nil
	}

	if _, err := users.GetUserByEmail(ctx, cfg.Email); err == nil {
		return nil
	} else if !domain.IsCode(err, domain.ENOTFOUND) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user, err := users.CreateUser(ctx, domain.CreateUserParams{
		Email:        cfg.Email,
		Name:         cfg.Name,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("created initial admin user", slog.String("email", user.Email))
	return nil
}
