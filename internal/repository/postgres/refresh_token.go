package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/admin-session/internal/model"
)

var (
	_ model.RefreshTokenStore   = (*RefreshTokenRepository)(nil)
	_ model.ExpiredTokenSweeper = (*RefreshTokenRepository)(nil)
)

// RefreshTokenRepository checks expiry on read; expired rows are reclaimed
// by DeleteExpired.
type RefreshTokenRepository struct {
	db  DBTX
	now func() time.Time
}

func NewRefreshTokenRepository(db DBTX, now func() time.Time) *RefreshTokenRepository {
	if now == nil {
		now = time.Now
	}
	return &RefreshTokenRepository{db: db, now: now}
}

func (r *RefreshTokenRepository) Put(ctx context.Context, token, subjectID string, ttl time.Duration) error {
	const query = `
        INSERT INTO refresh_tokens (token_hash, subject_id, issued_at, expires_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (token_hash) DO UPDATE
        SET subject_id = EXCLUDED.subject_id, issued_at = EXCLUDED.issued_at, expires_at = EXCLUDED.expires_at
    `
	if ttl <= 0 {
		return errors.New("refresh token ttl must be positive")
	}

	now := r.now()
	_, err := r.db.ExecContext(ctx, query, model.RefreshTokenKey(token), subjectID, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Get(ctx context.Context, token string) (model.RefreshToken, error) {
	const query = `
        SELECT subject_id, issued_at, expires_at
        FROM refresh_tokens WHERE token_hash = $1 AND expires_at > $2
    `
	var rt model.RefreshToken
	err := r.db.QueryRowContext(ctx, query, model.RefreshTokenKey(token), r.now()).Scan(
		&rt.SubjectID, &rt.IssuedAt, &rt.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM refresh_tokens WHERE token_hash = $1`
	if _, err := r.db.ExecContext(ctx, query, model.RefreshTokenKey(token)); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Consume(ctx context.Context, token string) (model.RefreshToken, error) {
	const query = `
        DELETE FROM refresh_tokens WHERE token_hash = $1 AND expires_at > $2
        RETURNING subject_id, issued_at, expires_at
    `
	var rt model.RefreshToken
	err := r.db.QueryRowContext(ctx, query, model.RefreshTokenKey(token), r.now()).Scan(
		&rt.SubjectID, &rt.IssuedAt, &rt.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at <= $1`
	res, err := r.db.ExecContext(ctx, query, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted refresh tokens: %w", err)
	}
	return n, nil
}
