package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/courtline/court-booking/internal/domain"
)

// UserRepository defines persistence access for user profiles.
type UserRepository interface {
	// Upsert inserts the user if absent and never overwrites an existing row.
	// It reports whether a row was created.
	Upsert(ctx context.Context, user *domain.User) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userRepository struct {
	q Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(q Querier) UserRepository {
	return &userRepository{q: q}
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) (bool, error) {
	const query = `
        INSERT INTO users (user_id, first_name, username)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO NOTHING`

	cmd, err := r.q.Exec(ctx, query, user.ID, user.DisplayName, user.Username)
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// GetByID returns nil, nil when the user does not exist.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT user_id, first_name, username, created_at
        FROM users WHERE user_id=$1`

	var user domain.User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Username,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
