package model

import "time"

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	// TokenKindAccess is a short-lived stateless token.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is a long-lived token tracked by RefreshTokenStore.
	TokenKindRefresh TokenKind = "refresh"
)

// Claims are the verified contents of a token.
type Claims struct {
	ID        string
	SubjectID string
	Authority Role
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the identity the token was minted for.
func (c Claims) Identity() Identity {
	return Identity{SubjectID: c.SubjectID, Authority: c.Authority}
}

// TokenManager mints and verifies signed tokens.
type TokenManager interface {
	Mint(identity Identity, kind TokenKind) (string, error)
	Verify(token string, kind TokenKind) (Claims, error)
	TTL(kind TokenKind) time.Duration
}
