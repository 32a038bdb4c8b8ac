package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/admin-session/internal/api/http/context"
	"github.com/dtroode/admin-session/internal/mocks"
	"github.com/dtroode/admin-session/internal/model"
	"github.com/dtroode/admin-session/internal/testutil"
)

var testPolicy = model.CookiePolicy{
	Name:     "rt",
	Domain:   "admin.example.com",
	Path:     "/",
	SameSite: http.SameSiteNoneMode,
	Secure:   true,
	HTTPOnly: true,
	MaxAge:   7 * 24 * time.Hour,
}

func newTestSession(t *testing.T) (*Session, *mocks.SessionService, *httpctx.Manager) {
	t.Helper()
	svc := mocks.NewSessionService(t)
	cm := httpctx.NewManager()
	return NewSession(svc, cm, testPolicy, testutil.MakeNoopLogger()), svc, cm
}

func findCookie(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSession_Login(t *testing.T) {
	t.Parallel()

	h, svc, _ := newTestSession(t)
	svc.On("Login", mock.Anything, model.Credentials{ID: "alice", Password: "correct-pw"}).Return(model.LoginResult{
		User:          model.UserInfo{ID: "alice", Authority: model.RoleAdmin},
		AccessToken:   "access",
		RefreshCookie: model.RefreshCookie{Value: "refresh", Policy: testPolicy},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"id":"alice","password":"correct-pw"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	res := rec.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body LoginResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "alice", body.UserInfo.ID)
	assert.Equal(t, model.RoleAdmin, body.UserInfo.Authority)
	assert.Equal(t, "access", body.AccessToken)
	assert.Equal(t, "success", body.Message)

	c := findCookie(t, res, "rt")
	assert.Equal(t, "refresh", c.Value)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, "admin.example.com", c.Domain)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestSession_Login_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		serviceErr error
		callsSvc   bool
		wantStatus int
		wantMsg    string
	}{
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest, wantMsg: "invalid request body"},
		{name: "missing password", body: `{"id":"alice"}`, wantStatus: http.StatusBadRequest, wantMsg: "id and password are required"},
		{
			name:       "bad credentials",
			body:       `{"id":"alice","password":"wrong"}`,
			serviceErr: model.ErrAuthenticationFailed,
			callsSvc:   true,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "no such user or bad credentials",
		},
		{
			name:       "internal",
			body:       `{"id":"alice","password":"pw"}`,
			serviceErr: model.ErrInternal,
			callsSvc:   true,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, svc, _ := newTestSession(t)
			if tt.callsSvc {
				svc.On("Login", mock.Anything, mock.Anything).Return(model.LoginResult{}, tt.serviceErr).Once()
			}

			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body MessageResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestSession_Logout(t *testing.T) {
	t.Parallel()

	h, svc, cm := newTestSession(t)
	svc.On("Logout", mock.Anything, model.LogoutRequest{SubjectID: "alice", RefreshToken: "refresh"}).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: "rt", Value: "refresh"})
	req = req.WithContext(cm.SetIdentityToContext(req.Context(), model.Identity{SubjectID: "alice", Authority: model.RoleAdmin}))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	res := rec.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	c := findCookie(t, res, "rt")
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}

func TestSession_Logout_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cookie     string
		serviceErr error
		wantStatus int
	}{
		{name: "blank", cookie: "", serviceErr: model.ErrRefreshTokenBlank, wantStatus: http.StatusBadRequest},
		{name: "foreign or absent", cookie: "refresh", serviceErr: model.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "internal", cookie: "refresh", serviceErr: model.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, svc, cm := newTestSession(t)
			svc.On("Logout", mock.Anything, model.LogoutRequest{SubjectID: "alice", RefreshToken: tt.cookie}).Return(tt.serviceErr).Once()

			req := httptest.NewRequest(http.MethodGet, "/users/logout", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "rt", Value: tt.cookie})
			}
			req = req.WithContext(cm.SetIdentityToContext(req.Context(), model.Identity{SubjectID: "alice", Authority: model.RoleGuest}))
			rec := httptest.NewRecorder()
			h.Logout(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestSession_NoIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		handle func(h *Session) http.HandlerFunc
	}{
		{name: "logout", path: "/users/logout", handle: func(h *Session) http.HandlerFunc { return h.Logout }},
		{name: "me", path: "/users/me", handle: func(h *Session) http.HandlerFunc { return h.Me }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewSessionService(t)
			cm := mocks.NewContextManager(t)
			cm.On("GetIdentityFromContext", mock.Anything).Return(model.Identity{}, false).Once()
			h := NewSession(svc, cm, testPolicy, testutil.MakeNoopLogger())

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: "rt", Value: "refresh"})
			rec := httptest.NewRecorder()
			tt.handle(h)(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestSession_Reissue(t *testing.T) {
	t.Parallel()

	t.Run("without rotation", func(t *testing.T) {
		t.Parallel()

		h, svc, _ := newTestSession(t)
		svc.On("Renew", mock.Anything, "refresh").Return(model.RenewResult{AccessToken: "access"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/users/reissue", nil)
		req.AddCookie(&http.Cookie{Name: "rt", Value: "refresh"})
		rec := httptest.NewRecorder()
		h.Reissue(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"accessToken":"access"}`, rec.Body.String())
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("with rotation", func(t *testing.T) {
		t.Parallel()

		h, svc, _ := newTestSession(t)
		svc.On("Renew", mock.Anything, "refresh").Return(model.RenewResult{
			AccessToken:   "access",
			RefreshCookie: &model.RefreshCookie{Value: "rotated", Policy: testPolicy},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/users/reissue", nil)
		req.AddCookie(&http.Cookie{Name: "rt", Value: "refresh"})
		rec := httptest.NewRecorder()
		h.Reissue(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "rotated", findCookie(t, rec.Result(), "rt").Value)
	})
}

func TestSession_Reissue_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{name: "blank", serviceErr: model.ErrRefreshTokenBlank, wantStatus: http.StatusBadRequest, wantBody: "refresh token is blank"},
		{name: "expired", serviceErr: model.ErrRefreshTokenExpired, wantStatus: http.StatusForbidden, wantBody: "refresh token expired"},
		{name: "internal", serviceErr: model.ErrInternal, wantStatus: http.StatusInternalServerError, wantBody: "error"},
		{name: "unexpected", serviceErr: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError, wantBody: "error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, svc, _ := newTestSession(t)
			svc.On("Renew", mock.Anything, "").Return(model.RenewResult{}, tt.serviceErr).Once()

			rec := httptest.NewRecorder()
			h.Reissue(rec, httptest.NewRequest(http.MethodPost, "/users/reissue", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		})
	}
}

func TestSession_Me(t *testing.T) {
	t.Parallel()

	h, _, cm := newTestSession(t)
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = req.WithContext(cm.SetIdentityToContext(req.Context(), model.Identity{SubjectID: "alice", Authority: model.RoleManager}))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"alice","authority":"MANAGER"}`, rec.Body.String())
}
