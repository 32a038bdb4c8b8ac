package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		required []Role
		want     bool
	}{
		{
			name:     "role in required set",
			identity: Identity{SubjectID: "alice", Authority: RoleManager},
			required: []Role{RoleAdmin, RoleManager},
			want:     true,
		},
		{
			name:     "role outside required set",
			identity: Identity{SubjectID: "alice", Authority: RoleGuest},
			required: []Role{RoleAdmin},
			want:     false,
		},
		{
			name:     "no required roles",
			identity: Identity{SubjectID: "alice", Authority: RoleGuest},
			want:     true,
		},
		{
			name:     "anonymous identity",
			identity: Identity{Authority: RoleAdmin},
			required: []Role{RoleAdmin},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.identity, tt.required...))
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleManager.Valid())
	assert.True(t, RoleGuest.Valid())
	assert.False(t, Role("ROOT").Valid())
	assert.False(t, Role("").Valid())
}

func TestRefreshToken_Expired(t *testing.T) {
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rt := RefreshToken{SubjectID: "alice", ExpiresAt: exp}

	assert.False(t, rt.Expired(exp.Add(-time.Second)))
	assert.True(t, rt.Expired(exp))
	assert.True(t, rt.Expired(exp.Add(time.Second)))
}

func TestUser_Info(t *testing.T) {
	u := User{ID: "alice", PasswordHash: "$2a$hash", Authority: RoleAdmin}

	assert.Equal(t, UserInfo{ID: "alice", Authority: RoleAdmin}, u.Info())
	assert.Equal(t, Identity{SubjectID: "alice", Authority: RoleAdmin}, u.Identity())
}

func TestRefreshTokenKey(t *testing.T) {
	k1 := RefreshTokenKey("token-a")
	k2 := RefreshTokenKey("token-b")

	assert.Len(t, k1, 64)
	assert.Equal(t, k1, RefreshTokenKey("token-a"))
	assert.NotEqual(t, k1, k2)
	assert.NotContains(t, k1, "token-a")
}
