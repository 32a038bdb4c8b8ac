package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/admin-session/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps users in process memory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]model.User)}
}

// GetByID returns the user or model.ErrNotFound.
func (r *UserRepository) GetByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

// Save inserts or replaces the user. CreatedAt of an existing user is kept.
func (r *UserRepository) Save(_ context.Context, user model.User) (model.User, error) {
	if user.ID == "" {
		return model.User{}, errors.New("user id is empty")
	}
	if !user.Authority.Valid() {
		return model.User{}, fmt.Errorf("invalid authority %q", user.Authority)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if existing, ok := r.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}
	r.users[user.ID] = user

	return user, nil
}
