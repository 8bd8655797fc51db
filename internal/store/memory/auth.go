package memory

import (
	"context"
	"time"

	"github.com/brightline/agency-server/internal/model"
)

// CreateResetToken stores a new token hash for the user and marks any
// prior unused token as used, keeping at most one active token per
// user.
func (s *Store) CreateResetToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.resetTokens {
		if t.UserID == userID && !t.Used {
			t.Used = true
			s.resetTokens[id] = t
		}
	}
	id := s.next("password_reset_tokens")
	s.resetTokens[id] = model.PasswordResetToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: now(),
	}
	return nil
}

// ResetTokenOwner returns the owning user for a live token, or
// (nil, nil) when the token is unknown, used or expired. The token
// is not consumed here so the caller can render a form first.
func (s *Store) ResetTokenOwner(ctx context.Context, tokenHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.resetTokens {
		if t.TokenHash != tokenHash {
			continue
		}
		if t.Used || now().After(t.ExpiresAt) {
			return nil, nil
		}
		if u, ok := s.users[t.UserID]; ok {
			return &u, nil
		}
		return nil, nil
	}
	return nil, nil
}

func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.resetTokens {
		if t.TokenHash == tokenHash && !t.Used {
			t.Used = true
			s.resetTokens[id] = t
		}
	}
	return nil
}

// CreateOTP stores a new code for the email and invalidates prior
// unused codes for the same email.
func (s *Store) CreateOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.otpCodes {
		if o.Email == email && !o.Used {
			o.Used = true
			s.otpCodes[id] = o
		}
	}
	id := s.next("otp_codes")
	s.otpCodes[id] = model.OTPCode{
		ID:        id,
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: now(),
	}
	return nil
}

// ValidOTP matches by (email, code) so identical codes issued to
// different emails never cross-validate.
func (s *Store) ValidOTP(ctx context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.otpCodes {
		if o.Email == email && o.Code == code && !o.Used && now().Before(o.ExpiresAt) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ConsumeOTP(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.otpCodes {
		if o.Email == email && o.Code == code && !o.Used {
			o.Used = true
			s.otpCodes[id] = o
		}
	}
	return nil
}
