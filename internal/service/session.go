package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
	"github.com/dtroode/admin-session/internal/password"
)

// Session implements login, logout and renewal over refresh tokens.
type Session struct {
	users         model.UserStore
	verifier      model.CredentialVerifier
	tokens        *TokenService
	audit         model.AuditSink
	cookie        model.CookiePolicy
	rotateOnRenew bool
	dummyHash     func() string
	now           func() time.Time
	logger        *logger.Logger
}

// SessionOption configures Session.
type SessionOption func(*Session)

// WithRotateOnRenew makes every renewal consume the presented refresh token and issue a new one.
func WithRotateOnRenew(rotate bool) SessionOption {
	return func(s *Session) {
		s.rotateOnRenew = rotate
	}
}

// WithAuditSink sets the sink for lifecycle events.
func WithAuditSink(sink model.AuditSink) SessionOption {
	return func(s *Session) {
		s.audit = sink
	}
}

// WithSessionClock overrides the time source of audit events.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session service. The cookie MaxAge is always taken from the refresh token TTL.
func NewSession(
	users model.UserStore,
	verifier model.CredentialVerifier,
	tokens *TokenService,
	cookie model.CookiePolicy,
	logger *logger.Logger,
	opts ...SessionOption,
) *Session {
	cookie.MaxAge = tokens.RefreshTTL()
	s := &Session{
		users:     users,
		verifier:  verifier,
		tokens:    tokens,
		cookie:    cookie,
		dummyHash: password.DummyHash,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials and issues a token pair.
// Unknown ids and wrong passwords both fail with model.ErrAuthenticationFailed.
func (s *Session) Login(ctx context.Context, credentials model.Credentials) (model.LoginResult, error) {
	s.logger.Debug("Session service: login attempt", "subject_id", credentials.ID)

	user, err := s.users.GetByID(ctx, credentials.ID)
	if errors.Is(err, model.ErrNotFound) {
		// Same hashing cost as a wrong password.
		s.verifier.Verify(credentials.Password, s.dummyHash())
		s.logger.Info("Session service: login rejected, unknown subject", "subject_id", credentials.ID)
		s.record(ctx, model.AuditLoginFailed, credentials.ID, "unknown subject")
		return model.LoginResult{}, model.ErrAuthenticationFailed
	}
	if err != nil {
		s.logger.Error("Session service: failed to get user",
			"subject_id", credentials.ID,
			"error", err.Error())
		return model.LoginResult{}, fmt.Errorf("%w: failed to get user: %w", model.ErrInternal, err)
	}

	if !s.verifier.Verify(credentials.Password, user.PasswordHash) {
		s.logger.Info("Session service: login rejected, bad credentials", "subject_id", credentials.ID)
		s.record(ctx, model.AuditLoginFailed, credentials.ID, "bad credentials")
		return model.LoginResult{}, model.ErrAuthenticationFailed
	}

	access, refresh, err := s.tokens.Issue(ctx, user.Identity())
	if err != nil {
		s.logger.Error("Session service: failed to issue tokens",
			"subject_id", user.ID,
			"error", err.Error())
		return model.LoginResult{}, fmt.Errorf("%w: %w", model.ErrInternal, err)
	}

	s.logger.Info("Session service: login succeeded",
		"subject_id", user.ID,
		"token", tokenRef(refresh))
	s.record(ctx, model.AuditLoginSucceeded, user.ID, "")

	return model.LoginResult{
		User:          user.Info(),
		AccessToken:   access,
		RefreshCookie: s.refreshCookie(refresh),
	}, nil
}

// Logout revokes the refresh token after checking it belongs to the caller.
func (s *Session) Logout(ctx context.Context, request model.LogoutRequest) error {
	if strings.TrimSpace(request.RefreshToken) == "" {
		return model.ErrRefreshTokenBlank
	}

	record, err := s.tokens.Lookup(ctx, request.RefreshToken)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session service: logout rejected, refresh token not found",
			"subject_id", request.SubjectID,
			"token", tokenRef(request.RefreshToken))
		return model.ErrUnauthorized
	}
	if err != nil {
		s.logger.Error("Session service: failed to get refresh token",
			"subject_id", request.SubjectID,
			"error", err.Error())
		return fmt.Errorf("%w: %w", model.ErrInternal, err)
	}

	if record.SubjectID != request.SubjectID {
		s.logger.Warn("Session service: logout rejected, refresh token bound to another subject",
			"subject_id", request.SubjectID,
			"token", tokenRef(request.RefreshToken))
		return model.ErrUnauthorized
	}

	if err := s.tokens.Revoke(ctx, request.RefreshToken); err != nil {
		s.logger.Error("Session service: failed to revoke refresh token",
			"subject_id", request.SubjectID,
			"error", err.Error())
		return fmt.Errorf("%w: %w", model.ErrInternal, err)
	}

	s.logger.Info("Session service: logout succeeded", "subject_id", request.SubjectID)
	s.record(ctx, model.AuditLogout, request.SubjectID, "")

	return nil
}

// Renew mints a new access token for the subject bound to the refresh token.
// The caller identity is not consulted; the refresh token alone authorizes renewal.
func (s *Session) Renew(ctx context.Context, refreshToken string) (model.RenewResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return model.RenewResult{}, model.ErrRefreshTokenBlank
	}

	record, err := s.tokens.Lookup(ctx, refreshToken)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Session service: renew rejected, refresh token not found", "token", tokenRef(refreshToken))
		return model.RenewResult{}, model.ErrRefreshTokenExpired
	}
	if err != nil {
		s.logger.Error("Session service: failed to get refresh token", "error", err.Error())
		return model.RenewResult{}, fmt.Errorf("%w: %w", model.ErrInternal, err)
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.logger.Info("Session service: renew rejected, refresh token failed verification",
			"subject_id", record.SubjectID,
			"error", err.Error())
		return model.RenewResult{}, model.ErrRefreshTokenExpired
	}
	if claims.SubjectID != record.SubjectID {
		s.logger.Warn("Session service: renew rejected, token subject differs from record",
			"subject_id", record.SubjectID,
			"token_subject_id", claims.SubjectID)
		return model.RenewResult{}, model.ErrRefreshTokenExpired
	}

	user, err := s.users.GetByID(ctx, record.SubjectID)
	if err != nil {
		s.logger.Error("Session service: failed to resolve subject of refresh token",
			"subject_id", record.SubjectID,
			"error", err.Error())
		return model.RenewResult{}, fmt.Errorf("%w: failed to get user: %w", model.ErrInternal, err)
	}

	var result model.RenewResult
	if s.rotateOnRenew {
		refresh, err := s.tokens.Rotate(ctx, refreshToken, user.Identity())
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrTokenInvalid) {
			s.logger.Info("Session service: renew rejected, refresh token already rotated",
				"subject_id", user.ID,
				"token", tokenRef(refreshToken))
			return model.RenewResult{}, model.ErrRefreshTokenExpired
		}
		if err != nil {
			s.logger.Error("Session service: failed to rotate refresh token",
				"subject_id", user.ID,
				"error", err.Error())
			return model.RenewResult{}, fmt.Errorf("%w: %w", model.ErrInternal, err)
		}
		cookie := s.refreshCookie(refresh)
		result.RefreshCookie = &cookie
		s.record(ctx, model.AuditTokenRotated, user.ID, "")
	}

	access, err := s.tokens.Reissue(user.Identity())
	if err != nil {
		s.logger.Error("Session service: failed to reissue access token",
			"subject_id", user.ID,
			"error", err.Error())
		return model.RenewResult{}, fmt.Errorf("%w: %w", model.ErrInternal, err)
	}
	result.AccessToken = access

	s.logger.Info("Session service: access token renewed", "subject_id", user.ID, "rotated", s.rotateOnRenew)
	s.record(ctx, model.AuditTokenRenewed, user.ID, "")

	return result, nil
}

func (s *Session) refreshCookie(value string) model.RefreshCookie {
	return model.RefreshCookie{Value: value, Policy: s.cookie}
}

// record publishes an audit event. Failures are logged only.
func (s *Session) record(ctx context.Context, eventType model.AuditEventType, subjectID, reason string) {
	if s.audit == nil {
		return
	}

	event := model.NewAuditEvent(eventType, subjectID, s.now())
	event.Reason = reason
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("Session service: failed to record audit event",
			"type", string(eventType),
			"subject_id", subjectID,
			"error", err.Error())
	}
}

// tokenRef is a short non-reversible reference to a token for logs.
func tokenRef(token string) string {
	return model.RefreshTokenKey(token)[:12]
}
