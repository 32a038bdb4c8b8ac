package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/admin-session/internal/model"
)

// Claims represents JWT claims with token type and authority.
type Claims struct {
	jwt.RegisteredClaims
	Authority model.Role `json:"auth,omitempty"`
	TokenType string     `json:"typ"`
}

var _ model.TokenManager = (*JWT)(nil)

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures JWT.
type Option func(*JWT)

// WithClock overrides the time source used for minting and verification.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// NewJWT creates a new JWT token manager with the provided secret key and TTLs.
func NewJWT(secretKey string, accessTTL, refreshTTL time.Duration, opts ...Option) (*JWT, error) {
	if secretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive: access=%s refresh=%s", accessTTL, refreshTTL)
	}

	j := &JWT{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

// TTL returns the configured lifetime of the token kind.
func (j *JWT) TTL(kind model.TokenKind) time.Duration {
	if kind == model.TokenKindAccess {
		return j.accessTTL
	}
	return j.refreshTTL
}

// Mint creates a signed token of the given kind. Refresh tokens do not carry authority.
func (j *JWT) Mint(identity model.Identity, kind model.TokenKind) (string, error) {
	if kind != model.TokenKindAccess && kind != model.TokenKindRefresh {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	if identity.SubjectID == "" {
		return "", errors.New("token subject is empty")
	}

	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL(kind))),
		},
		TokenType: string(kind),
	}
	if kind == model.TokenKindAccess {
		claims.Authority = identity.Authority
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return tokenString, nil
}

// Verify checks signature, expiry and kind of the token and returns its claims.
// It fails with model.ErrTokenExpired or model.ErrTokenInvalid.
func (j *JWT) Verify(tokenString string, kind model.TokenKind) (model.Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Claims{}, fmt.Errorf("%w: %s token", model.ErrTokenExpired, kind)
		}
		return model.Claims{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if claims.TokenType != string(kind) {
		return model.Claims{}, fmt.Errorf("%w: token type mismatch: %s", model.ErrTokenInvalid, claims.TokenType)
	}
	if claims.Subject == "" {
		return model.Claims{}, fmt.Errorf("%w: empty subject", model.ErrTokenInvalid)
	}

	out := model.Claims{
		ID:        claims.ID,
		SubjectID: claims.Subject,
		Authority: claims.Authority,
		Kind:      kind,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	out.ExpiresAt = claims.ExpiresAt.Time

	return out, nil
}
