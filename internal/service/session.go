package service

import (
	"context"
	"time"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/utils"
)

// Session bundles the pair of tokens handed to a client on login.
// The refresh token travels to the client in raw form; only its
// SHA-256 hash is persisted.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// IssueSession mints a short-lived JWT plus an opaque refresh token
// for the user and stores the refresh token's hash.
func (a *AuthService) IssueSession(ctx context.Context, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(a.cfg.JWTSecret, u.ID, u.Role, a.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewOpaqueToken(time.Duration(a.cfg.RefreshTTLDays) * 24 * time.Hour)
	if err != nil {
		return nil, err
	}
	if err := a.store.StoreRefreshToken(ctx, u.ID, utils.HashToken(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:      access.Token,
		AccessExpiresAt:  access.Exp,
		RefreshToken:     refresh.Raw,
		RefreshExpiresAt: refresh.Exp,
	}, nil
}

// RefreshSession exchanges a valid refresh token for a fresh token
// pair. The presented token is revoked so each refresh token works
// exactly once.
func (a *AuthService) RefreshSession(ctx context.Context, refreshRaw string) (*Session, *model.User, error) {
	hash := utils.HashToken(refreshRaw)
	userID, err := a.store.RefreshTokenUser(ctx, hash)
	if err != nil {
		return nil, nil, err
	}
	if userID == 0 {
		return nil, nil, ErrInvalidToken
	}
	u, err := a.store.UserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil, ErrInvalidToken
	}
	if err := a.store.RevokeRefreshToken(ctx, hash); err != nil {
		return nil, nil, err
	}
	sess, err := a.IssueSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

// AccessTokenFor mints only a new access token against a still-valid
// refresh token, leaving the refresh token usable.
func (a *AuthService) AccessTokenFor(ctx context.Context, refreshRaw string) (*Session, error) {
	userID, err := a.store.RefreshTokenUser(ctx, utils.HashToken(refreshRaw))
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, ErrInvalidToken
	}
	u, err := a.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, ErrInvalidToken
	}
	access, err := utils.NewAccessToken(a.cfg.JWTSecret, u.ID, u.Role, a.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access.Token, AccessExpiresAt: access.Exp}, nil
}

// Logout revokes the presented refresh token. Unknown tokens are not
// an error; logout is idempotent.
func (a *AuthService) Logout(ctx context.Context, refreshRaw string) error {
	if refreshRaw == "" {
		return nil
	}
	return a.store.RevokeRefreshToken(ctx, utils.HashToken(refreshRaw))
}
