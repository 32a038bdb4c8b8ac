package context

import (
	"context"

	"github.com/dtroode/admin-session/internal/model"
)

type identityKey struct{}

// Manager stores the verified identity of a request in its context.
type Manager struct{}

// NewManager creates a new HTTP context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a copy of ctx carrying identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentityFromContext returns the identity set by the authentication middleware.
// An identity with an empty subject is reported as absent.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	if !ok || identity.SubjectID == "" {
		return model.Identity{}, false
	}
	return identity, true
}
