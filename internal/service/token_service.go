package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
)

// TokenService provides high-level operations for issuing, reissuing,
// rotating and revoking tokens. It composes the TokenManager and RefreshTokenStore.
type TokenService struct {
	manager model.TokenManager
	store   model.RefreshTokenStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, logger: logger}
}

// RefreshTTL is the single lifetime shared by refresh tokens, their records and the cookie.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.manager.TTL(model.TokenKindRefresh)
}

// Issue mints an access and a refresh token and persists the refresh token.
// Nothing is returned when the refresh token could not be stored.
func (s *TokenService) Issue(ctx context.Context, identity model.Identity) (accessToken string, refreshToken string, err error) {
	access, err := s.manager.Mint(identity, model.TokenKindAccess)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.mintRefresh(ctx, identity)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// Reissue mints a new access token for identity.
func (s *TokenService) Reissue(identity model.Identity) (string, error) {
	access, err := s.manager.Mint(identity, model.TokenKindAccess)
	if err != nil {
		return "", fmt.Errorf("reissue access: %w", err)
	}
	return access, nil
}

// Lookup returns the stored record of a refresh token.
func (s *TokenService) Lookup(ctx context.Context, refreshToken string) (model.RefreshToken, error) {
	return s.store.Get(ctx, refreshToken)
}

// VerifyRefresh checks signature, expiry and kind of a refresh token.
func (s *TokenService) VerifyRefresh(refreshToken string) (model.Claims, error) {
	return s.manager.Verify(refreshToken, model.TokenKindRefresh)
}

// Rotate consumes the presented refresh token and persists a new one for identity.
// Of several concurrent rotations of one token only one succeeds, the rest get model.ErrNotFound.
func (s *TokenService) Rotate(ctx context.Context, presentedRefresh string, identity model.Identity) (string, error) {
	record, err := s.store.Consume(ctx, presentedRefresh)
	if err != nil {
		return "", fmt.Errorf("consume old refresh: %w", err)
	}
	if record.SubjectID != identity.SubjectID {
		return "", fmt.Errorf("%w: refresh token bound to another subject", model.ErrTokenInvalid)
	}

	return s.mintRefresh(ctx, identity)
}

// Revoke removes a refresh token from the store. Revoking an absent token is not an error.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if err := s.store.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}

// Authenticate verifies an access token and returns the identity it was minted for.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	claims, err := s.manager.Verify(accessToken, model.TokenKindAccess)
	if err != nil {
		if !errors.Is(err, model.ErrTokenExpired) {
			s.logger.Debug("Token service: access token rejected", "error", err.Error())
		}
		return model.Identity{}, err
	}
	return claims.Identity(), nil
}

func (s *TokenService) mintRefresh(ctx context.Context, identity model.Identity) (string, error) {
	refresh, err := s.manager.Mint(identity, model.TokenKindRefresh)
	if err != nil {
		return "", fmt.Errorf("issue refresh: %w", err)
	}

	if err := s.store.Put(ctx, refresh, identity.SubjectID, s.RefreshTTL()); err != nil {
		return "", fmt.Errorf("persist refresh: %w", err)
	}

	return refresh, nil
}
