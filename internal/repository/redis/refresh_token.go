// Package redis stores refresh tokens in Redis with native key expiry.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/admin-session/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

const defaultKeyPrefix = "rt:"

type record struct {
	SubjectID string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// RefreshTokenRepository keeps one key per refresh token. Keys expire in
// Redis; the stored expiry is checked again on read.
type RefreshTokenRepository struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// Option configures RefreshTokenRepository.
type Option func(*RefreshTokenRepository)

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(r *RefreshTokenRepository) {
		r.prefix = prefix
	}
}

// WithClock overrides the time source for the read-side expiry check.
func WithClock(now func() time.Time) Option {
	return func(r *RefreshTokenRepository) {
		r.now = now
	}
}

func NewRefreshTokenRepository(client redis.Cmdable, opts ...Option) *RefreshTokenRepository {
	r := &RefreshTokenRepository{
		client: client,
		prefix: defaultKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RefreshTokenRepository) Put(ctx context.Context, token, subjectID string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("refresh token ttl must be positive")
	}

	now := r.now()
	payload, err := json.Marshal(record{
		SubjectID: subjectID,
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode refresh token: %w", err)
	}

	if err := r.client.Set(ctx, r.key(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Get(ctx context.Context, token string) (model.RefreshToken, error) {
	payload, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return r.decode(payload)
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Consume(ctx context.Context, token string) (model.RefreshToken, error) {
	payload, err := r.client.GetDel(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return r.decode(payload)
}

// Ping checks that the redis server is reachable.
func (r *RefreshTokenRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) key(token string) string {
	return r.prefix + model.RefreshTokenKey(token)
}

func (r *RefreshTokenRepository) decode(payload []byte) (model.RefreshToken, error) {
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to decode refresh token: %w", err)
	}

	rt := model.RefreshToken{
		SubjectID: rec.SubjectID,
		IssuedAt:  time.UnixMilli(rec.IssuedAt),
		ExpiresAt: time.UnixMilli(rec.ExpiresAt),
	}
	if rt.Expired(r.now()) {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return rt, nil
}
