package app

import (
	"fmt"
	"time"

	"sermonbot/pkg/domain"
)

// CreateAccessToken issues a bearer token for the user, or returns the
// stored one when it has not expired yet. Each user holds at most one live
// token at a time.
func (a *App) CreateAccessToken(userID string) (domain.AccessToken, error) {
	if a.codec == nil {
		return domain.AccessToken{}, fmt.Errorf("%w: token signing not configured", domain.ErrUpstream)
	}
	if _, ok, err := a.store.GetUserByID(userID); err != nil {
		return domain.AccessToken{}, err
	} else if !ok {
		return domain.AccessToken{}, fmt.Errorf("user %q: %w", userID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	stored, ok, err := a.tokens.GetToken(userID)
	if err != nil {
		return domain.AccessToken{}, err
	}
	if ok && !stored.Expired(now) {
		return stored, nil
	}

	expiresAt := now.Add(a.tokenTTL)
	signed, err := a.codec.Encode(userID, expiresAt)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("sign token: %w", err)
	}
	token := domain.AccessToken{
		UserID:      userID,
		AccessToken: signed,
		TokenType:   domain.TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}
	if err := a.tokens.UpsertToken(token); err != nil {
		return domain.AccessToken{}, err
	}
	return token, nil
}

// GetAccessToken returns the user's stored token if it is still live.
func (a *App) GetAccessToken(userID string) (domain.AccessToken, error) {
	token, ok, err := a.tokens.GetToken(userID)
	if err != nil {
		return domain.AccessToken{}, err
	}
	if !ok || token.Expired(time.Now().UTC()) {
		return domain.AccessToken{}, fmt.Errorf("token for user %q: %w", userID, domain.ErrNotFound)
	}
	return token, nil
}

// DeleteAccessToken revokes the user's token. Returns false if there was
// nothing to revoke.
func (a *App) DeleteAccessToken(userID string) (bool, error) {
	return a.tokens.DeleteToken(userID)
}

// ValidateAccessToken verifies a presented token and returns the user it
// belongs to. The token must carry a valid signature, be unexpired, and match
// the token currently stored for that user; a token that was superseded or
// revoked fails validation even while its signature is still valid.
func (a *App) ValidateAccessToken(token string) (string, error) {
	if a.codec == nil {
		return "", fmt.Errorf("%w: token signing not configured", domain.ErrUpstream)
	}
	userID, err := a.codec.Decode(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	stored, ok, err := a.tokens.GetToken(userID)
	if err != nil {
		return "", err
	}
	if !ok || stored.AccessToken != token || stored.Expired(time.Now().UTC()) {
		return "", fmt.Errorf("%w: token not recognized", domain.ErrInvalidInput)
	}
	return userID, nil
}
