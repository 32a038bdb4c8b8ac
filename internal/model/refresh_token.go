package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RefreshTokenStore persists refresh tokens with a time-to-live.
//
// Get and Consume return ErrNotFound both for tokens that never existed and
// for tokens past their expiry. Delete of an absent token is not an error.
type RefreshTokenStore interface {
	Put(ctx context.Context, token, subjectID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (RefreshToken, error)
	Delete(ctx context.Context, token string) error
	Consume(ctx context.Context, token string) (RefreshToken, error)
}

// ExpiredTokenSweeper is implemented by stores without native key expiry.
type ExpiredTokenSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// RefreshToken is the server-side record of an issued refresh token.
type RefreshToken struct {
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is no longer valid at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// RefreshTokenKey derives the storage key of a refresh token. Stores never
// keep the raw token value.
func RefreshTokenKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
