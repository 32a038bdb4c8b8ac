package model

import (
	"context"
	"slices"
	"time"
)

// Role is the authority granted to a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleGuest   Role = "GUEST"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleGuest:
		return true
	}
	return false
}

// Identity is the verified subject and authority backing all token claims.
type Identity struct {
	SubjectID string
	Authority Role
}

// Authorize reports whether identity holds one of the required roles.
// An empty required set admits any authenticated identity.
func Authorize(identity Identity, required ...Role) bool {
	if identity.SubjectID == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	return slices.Contains(required, identity.Authority)
}

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByID(ctx context.Context, id string) (User, error)
	Save(ctx context.Context, user User) (User, error)
}

// User represents a stored user with its credential hash.
type User struct {
	ID           string
	PasswordHash string
	Authority    Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the identity of the user.
func (u User) Identity() Identity {
	return Identity{SubjectID: u.ID, Authority: u.Authority}
}

// Info returns the public part of the user record.
func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Authority: u.Authority}
}

// UserInfo is the user data returned to clients.
type UserInfo struct {
	ID        string `json:"id"`
	Authority Role   `json:"authority"`
}

// CredentialVerifier checks a raw secret against a stored hash.
type CredentialVerifier interface {
	Verify(raw, hash string) bool
}
