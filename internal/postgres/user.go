package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"inventorypro/internal/domain"
)

const userColumns = "id, email, name, role, password_hash, created_at"

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, err
	}
	u.ID = fromPgUUID(id)
	u.CreatedAt = createdAt.Time
	return &u, nil
}

// CreateUser inserts an account. A duplicate email maps to ECONFLICT.
func (s *Store) CreateUser(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	const op = "users.create"

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		pgUUID(uuid.New()), params.Email, params.Name, params.Role, params.PasswordHash)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.Conflict(op, fmt.Sprintf("an account with email %s already exists", params.Email))
		}
		return nil, domain.Internal(err, op, "failed to create user")
	}
	return u, nil
}

// GetUserByEmail fetches one account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "users.get_by_email"

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "user", email)
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}
	return u, nil
}

// GetUserByID fetches one account by id.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "users.get"

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, pgUUID(id))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}
	return u, nil
}
