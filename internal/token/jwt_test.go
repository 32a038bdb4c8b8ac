package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/admin-session/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestJWT(t *testing.T, clock *fakeClock) *JWT {
	t.Helper()
	j, err := NewJWT("secret", 30*time.Minute, 7*24*time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return j
}

func TestNewJWT_Validation(t *testing.T) {
	_, err := NewJWT("", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewJWT("secret", 0, time.Hour)
	require.Error(t, err)

	_, err = NewJWT("secret", time.Minute, -time.Hour)
	require.Error(t, err)

	j, err := NewJWT("secret", time.Minute, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, j.TTL(model.TokenKindAccess))
	assert.Equal(t, time.Hour, j.TTL(model.TokenKindRefresh))
}

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newTestJWT(t, clock)
	identity := model.Identity{SubjectID: "alice", Authority: model.RoleAdmin}

	access, err := j.Mint(identity, model.TokenKindAccess)
	require.NoError(t, err)

	claims, err := j.Verify(access, model.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
	assert.Equal(t, model.TokenKindAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, clock.t.Add(30*time.Minute), claims.ExpiresAt, time.Second)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newTestJWT(t, clock)

	refresh, err := j.Mint(model.Identity{SubjectID: "alice", Authority: model.RoleAdmin}, model.TokenKindRefresh)
	require.NoError(t, err)

	claims, err := j.Verify(refresh, model.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.SubjectID)
	assert.Empty(t, claims.Authority)
	assert.WithinDuration(t, clock.t.Add(7*24*time.Hour), claims.ExpiresAt, time.Second)
}

func TestJWT_UniqueTokens(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newTestJWT(t, clock)
	identity := model.Identity{SubjectID: "alice"}

	first, err := j.Mint(identity, model.TokenKindRefresh)
	require.NoError(t, err)
	second, err := j.Mint(identity, model.TokenKindRefresh)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newTestJWT(t, clock)

	access, err := j.Mint(model.Identity{SubjectID: "alice"}, model.TokenKindAccess)
	require.NoError(t, err)

	_, err = j.Verify(access, model.TokenKindRefresh)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_ExpiryValidation(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newTestJWT(t, clock)

	access, err := j.Mint(model.Identity{SubjectID: "alice"}, model.TokenKindAccess)
	require.NoError(t, err)

	clock.t = clock.t.Add(29 * time.Minute)
	_, err = j.Verify(access, model.TokenKindAccess)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = j.Verify(access, model.TokenKindAccess)
	require.ErrorIs(t, err, model.ErrTokenExpired)
	assert.NotErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_InvalidTokens(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newTestJWT(t, clock)

	other, err := NewJWT("other-secret", time.Minute, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.Mint(model.Identity{SubjectID: "alice"}, model.TokenKindAccess)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
		TokenType: string(model.TokenKindAccess),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "foreign signature", token: foreign},
		{name: "none algorithm", token: none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Verify(tt.token, model.TokenKindAccess)
			require.ErrorIs(t, err, model.ErrTokenInvalid)
		})
	}
}

func TestJWT_Mint_Errors(t *testing.T) {
	j := newTestJWT(t, &fakeClock{t: time.Now()})

	_, err := j.Mint(model.Identity{}, model.TokenKindAccess)
	require.Error(t, err)

	_, err = j.Mint(model.Identity{SubjectID: "alice"}, model.TokenKind("id"))
	require.Error(t, err)
}
