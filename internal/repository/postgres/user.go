package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/admin-session/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	var user model.User
	query := `SELECT id, password_hash, authority, created_at, updated_at
			  FROM users WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.PasswordHash, &user.Authority, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// Save inserts the user or replaces its password hash and authority.
func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	if !user.Authority.Valid() {
		return model.User{}, fmt.Errorf("invalid authority %q", user.Authority)
	}

	query := `INSERT INTO users (id, password_hash, authority, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $4)
			  ON CONFLICT (id) DO UPDATE
			  SET password_hash = EXCLUDED.password_hash, authority = EXCLUDED.authority, updated_at = EXCLUDED.updated_at
			  RETURNING id, password_hash, authority, created_at, updated_at`

	now := user.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}

	var saved model.User
	err := r.db.QueryRowContext(ctx, query, user.ID, user.PasswordHash, user.Authority, now).Scan(
		&saved.ID, &saved.PasswordHash, &saved.Authority, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return saved, nil
}
