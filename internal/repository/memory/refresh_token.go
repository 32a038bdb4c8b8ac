// Package memory provides in-process user and refresh token stores for local
// development and tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dtroode/admin-session/internal/model"
)

var (
	_ model.RefreshTokenStore   = (*RefreshTokenRepository)(nil)
	_ model.ExpiredTokenSweeper = (*RefreshTokenRepository)(nil)
)

// RefreshTokenRepository keeps refresh tokens in a map keyed by token hash.
type RefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
	now    func() time.Time
}

// NewRefreshTokenRepository creates an empty store. A nil clock means time.Now.
func NewRefreshTokenRepository(now func() time.Time) *RefreshTokenRepository {
	if now == nil {
		now = time.Now
	}
	return &RefreshTokenRepository{
		tokens: make(map[string]model.RefreshToken),
		now:    now,
	}
}

func (r *RefreshTokenRepository) Put(_ context.Context, token, subjectID string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("refresh token ttl must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.tokens[model.RefreshTokenKey(token)] = model.RefreshToken{
		SubjectID: subjectID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

func (r *RefreshTokenRepository) Get(_ context.Context, token string) (model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookup(model.RefreshTokenKey(token))
}

func (r *RefreshTokenRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, model.RefreshTokenKey(token))
	return nil
}

func (r *RefreshTokenRepository) Consume(_ context.Context, token string) (model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := model.RefreshTokenKey(token)
	rt, err := r.lookup(key)
	if err != nil {
		return model.RefreshToken{}, err
	}
	delete(r.tokens, key)
	return rt, nil
}

// DeleteExpired removes every record past its expiry.
func (r *RefreshTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int64
	for key, rt := range r.tokens {
		if rt.Expired(now) {
			delete(r.tokens, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records, expired ones included.
func (r *RefreshTokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// lookup must be called with mu held.
func (r *RefreshTokenRepository) lookup(key string) (model.RefreshToken, error) {
	rt, ok := r.tokens[key]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	if rt.Expired(r.now()) {
		delete(r.tokens, key)
		return model.RefreshToken{}, model.ErrNotFound
	}
	return rt, nil
}
