package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
)

// SessionService is the session lifecycle used by the handler.
type SessionService interface {
	Login(ctx context.Context, credentials model.Credentials) (model.LoginResult, error)
	Logout(ctx context.Context, request model.LogoutRequest) error
	Renew(ctx context.Context, refreshToken string) (model.RenewResult, error)
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	UserInfo    model.UserInfo `json:"userInfo"`
	AccessToken string         `json:"accessToken"`
	Message     string         `json:"message"`
}

// AccessTokenResponse is the body of a successful reissue.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Session serves the /users endpoints.
type Session struct {
	service        SessionService
	contextManager model.ContextManager
	cookie         model.CookiePolicy
	logger         *logger.Logger
}

// NewSession creates a session handler. cookie names the refresh cookie read from requests
// and is used to expire it on logout.
func NewSession(service SessionService, contextManager model.ContextManager, cookie model.CookiePolicy, logger *logger.Logger) *Session {
	return &Session{service: service, contextManager: contextManager, cookie: cookie, logger: logger}
}

// Login handles POST /users/login.
func (h *Session) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("HTTP handler: failed to decode login request", "error", err.Error())
		RespondWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Password == "" {
		RespondWithMessage(w, http.StatusBadRequest, "id and password are required")
		return
	}

	res, err := h.service.Login(r.Context(), model.Credentials{ID: req.ID, Password: req.Password})
	if err != nil {
		status, message := statusFromError(err)
		RespondWithMessage(w, status, message)
		return
	}

	http.SetCookie(w, refreshCookie(res.RefreshCookie))
	RespondWithJSON(w, http.StatusOK, LoginResponse{
		UserInfo:    res.User,
		AccessToken: res.AccessToken,
		Message:     "success",
	})
}

// Logout handles GET /users/logout. The caller identity comes from the access token.
func (h *Session) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		RespondWithMessage(w, http.StatusUnauthorized, model.ErrUnauthorized.Error())
		return
	}

	err := h.service.Logout(r.Context(), model.LogoutRequest{
		SubjectID:    identity.SubjectID,
		RefreshToken: h.readRefreshToken(r),
	})
	if err != nil {
		status, message := statusFromError(err)
		RespondWithMessage(w, status, message)
		return
	}

	http.SetCookie(w, expiredCookie(h.cookie))
	RespondWithMessage(w, http.StatusOK, "success")
}

// Reissue handles POST /users/reissue. Errors are plain text.
func (h *Session) Reissue(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Renew(r.Context(), h.readRefreshToken(r))
	if err != nil {
		status, message := statusFromError(err)
		if errors.Is(err, model.ErrUnauthorized) {
			status, message = http.StatusInternalServerError, "error"
		}
		respondWithText(w, status, message)
		return
	}

	if res.RefreshCookie != nil {
		http.SetCookie(w, refreshCookie(*res.RefreshCookie))
	}
	RespondWithJSON(w, http.StatusOK, AccessTokenResponse{AccessToken: res.AccessToken})
}

// Me handles GET /users/me.
func (h *Session) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		RespondWithMessage(w, http.StatusUnauthorized, model.ErrUnauthorized.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, model.UserInfo{ID: identity.SubjectID, Authority: identity.Authority})
}

func (h *Session) readRefreshToken(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func refreshCookie(c model.RefreshCookie) *http.Cookie {
	return &http.Cookie{
		Name:     c.Policy.Name,
		Value:    c.Value,
		Domain:   c.Policy.Domain,
		Path:     c.Policy.Path,
		MaxAge:   int(c.Policy.MaxAge.Seconds()),
		Secure:   c.Policy.Secure,
		HttpOnly: c.Policy.HTTPOnly,
		SameSite: c.Policy.SameSite,
	}
}

func expiredCookie(policy model.CookiePolicy) *http.Cookie {
	return &http.Cookie{
		Name:     policy.Name,
		Value:    "",
		Domain:   policy.Domain,
		Path:     policy.Path,
		MaxAge:   -1,
		Secure:   policy.Secure,
		HttpOnly: policy.HTTPOnly,
		SameSite: policy.SameSite,
	}
}
