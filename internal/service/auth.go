package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightline/agency-server/internal/config"
	"github.com/brightline/agency-server/internal/mailer"
	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/utils"
)

// ErrInvalidToken is returned for an unknown, used or expired
// password-reset token. It is deliberately a single "invalid"
// outcome: the caller presents "link expired, request a new one"
// regardless of which condition failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrInvalidOTP is the OTP counterpart of ErrInvalidToken.
var ErrInvalidOTP = errors.New("invalid or expired code")

// AuthService implements registration, credential validation and the
// two password-recovery paths (emailed link and OTP).
type AuthService struct {
	store store.Store
	mail  mailer.Mailer
	cfg   config.Config
}

// NewAuthService wires the credential manager.
func NewAuthService(s store.Store, m mailer.Mailer, cfg config.Config) *AuthService {
	return &AuthService{store: s, mail: m, cfg: cfg}
}

// NormalizeEmail lowercases and trims an email address the same way
// everywhere a user is looked up or created.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a hashed password. The role defaults
// to customer; staff roles are assigned only through the admin user
// endpoints, never by self-registration.
func (a *AuthService) Register(ctx context.Context, name, email, password, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		role = model.RoleCustomer
	}
	hash, err := utils.HashPassword(password, a.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user for valid credentials and (nil, nil)
// for any failure. Wrong email and wrong password are deliberately
// indistinguishable to the caller so the endpoint cannot be used to
// enumerate accounts.
func (a *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := a.store.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return u, nil
}

// StartPasswordReset issues a reset token for the account and emails
// the reset link. For an unknown email it does nothing and reports
// no error, so the endpoint's response shape never reveals whether
// the account exists. The returned boolean says whether the email
// was actually handed to the relay.
func (a *AuthService) StartPasswordReset(ctx context.Context, email string) (sent bool, err error) {
	u, err := a.store.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if u == nil || !u.IsActive {
		return false, nil
	}
	tok, err := utils.NewOpaqueToken(a.cfg.ResetTokenTTL)
	if err != nil {
		return false, err
	}
	if err := a.store.CreateResetToken(ctx, u.ID, utils.HashToken(tok.Raw), tok.Exp); err != nil {
		return false, err
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", a.cfg.PublicBaseURL, tok.Raw)
	sent = a.mail.Send(mailer.Message{
		To:      u.Email,
		Subject: "Reset your password",
		Text:    "Open this link to choose a new password (valid for one hour): " + link,
		HTML:    fmt.Sprintf(`<p>Open <a href="%s">this link</a> to choose a new password. The link is valid for one hour.</p>`, link),
	})
	return sent, nil
}

// ValidateResetToken returns the owning user for a live token without
// consuming it, so the caller can show the reset form first. A dead
// token returns (nil, nil).
func (a *AuthService) ValidateResetToken(ctx context.Context, raw string) (*model.User, error) {
	return a.store.ResetTokenOwner(ctx, utils.HashToken(raw))
}

// ResetPassword validates and consumes the token, replaces the
// password and revokes every refresh token the user holds, logging
// all other sessions out.
func (a *AuthService) ResetPassword(ctx context.Context, raw, password string) error {
	u, err := a.ValidateResetToken(ctx, raw)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidToken
	}
	hash, err := utils.HashPassword(password, a.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := a.store.SetUserPassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := a.store.ConsumeResetToken(ctx, utils.HashToken(raw)); err != nil {
		return err
	}
	return a.store.RevokeUserRefreshTokens(ctx, u.ID)
}

// StartOTPReset issues a six-digit code for the account and emails
// it. Same non-enumeration contract as StartPasswordReset.
func (a *AuthService) StartOTPReset(ctx context.Context, email string) (sent bool, err error) {
	addr := NormalizeEmail(email)
	u, err := a.store.UserByEmail(ctx, addr)
	if err != nil {
		return false, err
	}
	if u == nil || !u.IsActive {
		return false, nil
	}
	code, err := utils.NewOTPCode()
	if err != nil {
		return false, err
	}
	exp := time.Now().UTC().Add(a.cfg.OTPTTL)
	if err := a.store.CreateOTP(ctx, addr, code, exp); err != nil {
		return false, err
	}
	sent = a.mail.Send(mailer.Message{
		To:      addr,
		Subject: "Your verification code",
		Text:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(a.cfg.OTPTTL.Minutes())),
	})
	return sent, nil
}

// ResetPasswordOTP validates and consumes the (email, code) pair,
// replaces the password and revokes all sessions.
func (a *AuthService) ResetPasswordOTP(ctx context.Context, email, code, password string) error {
	addr := NormalizeEmail(email)
	ok, err := a.store.ValidOTP(ctx, addr, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	u, err := a.store.UserByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidOTP
	}
	hash, err := utils.HashPassword(password, a.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := a.store.SetUserPassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := a.store.ConsumeOTP(ctx, addr, code); err != nil {
		return err
	}
	return a.store.RevokeUserRefreshTokens(ctx, u.ID)
}
