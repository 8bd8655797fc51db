package model

import "time"

// PasswordResetToken models a row in the `password_reset_tokens`
// table. The emailed token is never stored in the clear; only its
// SHA-256 hash. A token is single-use: validation checks both the
// used flag and the expiry, lazily at lookup time.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp (60 minutes after issue).
//  Used      – whether the token has been consumed.
//  CreatedAt – timestamp of creation.
type PasswordResetToken struct {
	ID        uint64    `json:"id"`         // password_reset_tokens.id
	UserID    uint64    `json:"user_id"`    // password_reset_tokens.user_id
	TokenHash string    `json:"-"`          // password_reset_tokens.token_hash
	ExpiresAt time.Time `json:"expires_at"` // password_reset_tokens.expires_at
	Used      bool      `json:"used"`       // password_reset_tokens.used
	CreatedAt time.Time `json:"created_at"` // password_reset_tokens.created_at
}

// OTPCode models a row in the `otp_codes` table. Codes are short
// numeric strings matched by (email, code) so that identical codes
// issued to different users cannot cross-validate. Same single-use
// and lazy-expiry semantics as reset tokens, with a shorter window.
type OTPCode struct {
	ID        uint64    `json:"id"`         // otp_codes.id
	Email     string    `json:"email"`      // otp_codes.email
	Code      string    `json:"-"`          // otp_codes.code
	ExpiresAt time.Time `json:"expires_at"` // otp_codes.expires_at
	Used      bool      `json:"used"`       // otp_codes.used
	CreatedAt time.Time `json:"created_at"` // otp_codes.created_at
}
