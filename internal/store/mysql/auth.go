package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/brightline/agency-server/internal/model"
)

// CreateResetToken invalidates any prior unused token for the user
// inside the same transaction that inserts the new one, so at most
// one token is ever active per user.
func (s *Store) CreateResetToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used=1 WHERE user_id=? AND used=0", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) ResetTokenOwner(ctx context.Context, tokenHash string) (*model.User, error) {
	var (
		userID    uint64
		expiresAt time.Time
		used      bool
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at, used FROM password_reset_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &used)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if used || time.Now().UTC().After(expiresAt) {
		return nil, nil
	}
	return s.UserByID(ctx, userID)
}

func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used=1 WHERE token_hash=? AND used=0", tokenHash)
	return err
}

func (s *Store) CreateOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		"UPDATE otp_codes SET used=1 WHERE email=? AND used=0", email); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO otp_codes (email, code, expires_at) VALUES (?,?,?)",
		email, code, expiresAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) ValidOTP(ctx context.Context, email, code string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM otp_codes WHERE email=? AND code=? AND used=0 AND expires_at > UTC_TIMESTAMP()",
		email, code).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ConsumeOTP(ctx context.Context, email, code string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE otp_codes SET used=1 WHERE email=? AND code=? AND used=0", email, code)
	return err
}
