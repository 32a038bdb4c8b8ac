package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dtroode/admin-session/internal/api/http/handler"
	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
)

// TokenService resolves identities from bearer tokens.
type TokenService interface {
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
}

// Authenticate validates bearer tokens and injects the identity into the request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid access token with 401.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			handler.RespondWithMessage(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		identity, err := m.tokenService.Authenticate(r.Context(), tokenString)
		if err != nil || identity.SubjectID == "" {
			m.logger.Debug("HTTP authenticate: rejected access token", "path", r.URL.Path)
			handler.RespondWithMessage(w, http.StatusUnauthorized, "invalid authorization token")
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetIdentityToContext(r.Context(), identity)))
	})
}

// RequireRoles admits requests whose identity holds one of roles. It must run after Authenticate.
func RequireRoles(contextManager model.ContextManager, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := contextManager.GetIdentityFromContext(r.Context())
			if !ok {
				handler.RespondWithMessage(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !model.Authorize(identity, roles...) {
				handler.RespondWithMessage(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
