package service

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightline/agency-server/internal/config"
	"github.com/brightline/agency-server/internal/mailer"
	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/store/memory"
)

// captureMailer records outgoing messages instead of sending them.
type captureMailer struct {
	msgs []mailer.Message
	fail bool
}

func (m *captureMailer) Send(msg mailer.Message) bool {
	m.msgs = append(m.msgs, msg)
	return !m.fail
}

func (m *captureMailer) last(t *testing.T) mailer.Message {
	t.Helper()
	require.NotEmpty(t, m.msgs)
	return m.msgs[len(m.msgs)-1]
}

func testCfg() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
		ResetTokenTTL:  time.Hour,
		OTPTTL:         10 * time.Minute,
		PublicBaseURL:  "http://localhost:3000",
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *memory.Store, *captureMailer) {
	t.Helper()
	st := memory.New()
	mail := &captureMailer{}
	return NewAuthService(st, mail, testCfg()), st, mail
}

var tokenRe = regexp.MustCompile(`token=([0-9a-f]+)`)
var codeRe = regexp.MustCompile(`\b(\d{6})\b`)

func TestRegisterAndAuthenticate(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, "Jane", "  Jane@Example.COM ", "hunter2secret", model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, model.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)

	// Only the hash is stored, and it verifies the plaintext.
	assert.NotEqual(t, "hunter2secret", u.PasswordHash)
	assert.NotContains(t, u.PasswordHash, "hunter2secret")

	got, err := auth.Authenticate(ctx, "jane@example.com", "hunter2secret")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	// Wrong password and unknown account look identical.
	got, err = auth.Authenticate(ctx, "jane@example.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = auth.Authenticate(ctx, "nobody@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Jane", "jane@example.com", "hunter2secret", model.RoleCustomer)
	require.NoError(t, err)
	_, err = auth.Register(ctx, "Impostor", "JANE@example.com", "other-password", model.RoleCustomer)
	require.ErrorIs(t, err, store.ErrEmailExists)
}

func TestRegisterInvalidRoleDefaultsToCustomer(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	u, err := auth.Register(context.Background(), "Jane", "jane@example.com", "hunter2secret", "superuser")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, u.Role)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	auth, st, _ := newAuthFixture(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, "Jane", "jane@example.com", "hunter2secret", model.RoleCustomer)
	require.NoError(t, err)
	inactive := false
	_, err = st.UpdateUser(ctx, u.ID, store.UserUpdate{IsActive: &inactive})
	require.NoError(t, err)

	got, err := auth.Authenticate(ctx, "jane@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestPasswordResetFlow walks the full signup → forgot → reset →
// login journey, including single-use enforcement and session
// revocation.
func TestPasswordResetFlow(t *testing.T) {
	auth, _, mail := newAuthFixture(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, "Jane", "jane@example.com", "original-pass", model.RoleCustomer)
	require.NoError(t, err)
	sess, err := auth.IssueSession(ctx, u)
	require.NoError(t, err)

	sent, err := auth.StartPasswordReset(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, sent)

	m := mail.last(t)
	assert.Equal(t, "jane@example.com", m.To)
	match := tokenRe.FindStringSubmatch(m.Text)
	require.Len(t, match, 2, "reset email must carry the raw token")
	raw := match[1]

	// Validation does not consume.
	owner, err := auth.ValidateResetToken(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, owner)
	owner, err = auth.ValidateResetToken(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, owner)

	require.NoError(t, auth.ResetPassword(ctx, raw, "brand-new-pass"))

	got, err := auth.Authenticate(ctx, "jane@example.com", "brand-new-pass")
	require.NoError(t, err)
	require.NotNil(t, got)
	got, err = auth.Authenticate(ctx, "jane@example.com", "original-pass")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The token is single use.
	err = auth.ResetPassword(ctx, raw, "third-pass")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Every pre-reset session is gone.
	_, _, err = auth.RefreshSession(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStartPasswordResetUnknownEmail(t *testing.T) {
	auth, _, mail := newAuthFixture(t)

	sent, err := auth.StartPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, mail.msgs, "no email goes out for unknown accounts")
}

func TestNewResetTokenInvalidatesPrevious(t *testing.T) {
	auth, _, mail := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Jane", "jane@example.com", "original-pass", model.RoleCustomer)
	require.NoError(t, err)

	_, err = auth.StartPasswordReset(ctx, "jane@example.com")
	require.NoError(t, err)
	first := tokenRe.FindStringSubmatch(mail.last(t).Text)[1]

	_, err = auth.StartPasswordReset(ctx, "jane@example.com")
	require.NoError(t, err)
	second := tokenRe.FindStringSubmatch(mail.last(t).Text)[1]
	require.NotEqual(t, first, second)

	owner, err := auth.ValidateResetToken(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, owner, "older token must be dead")
	owner, err = auth.ValidateResetToken(ctx, second)
	require.NoError(t, err)
	assert.NotNil(t, owner)
}

func TestOTPResetFlow(t *testing.T) {
	auth, _, mail := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Jane", "jane@example.com", "original-pass", model.RoleCustomer)
	require.NoError(t, err)

	sent, err := auth.StartOTPReset(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, sent)

	match := codeRe.FindStringSubmatch(mail.last(t).Text)
	require.Len(t, match, 2, "OTP email must carry the code")
	code := match[1]

	// Wrong code fails without consuming the right one.
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = auth.ResetPasswordOTP(ctx, "jane@example.com", wrong, "new-pass-123")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	require.NoError(t, auth.ResetPasswordOTP(ctx, "jane@example.com", code, "new-pass-123"))
	got, err := auth.Authenticate(ctx, "jane@example.com", "new-pass-123")
	require.NoError(t, err)
	require.NotNil(t, got)

	// The code is single use.
	err = auth.ResetPasswordOTP(ctx, "jane@example.com", code, "another-pass")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestOTPDoesNotCrossAccounts(t *testing.T) {
	auth, _, mail := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Jane", "jane@example.com", "jane-pass-123", model.RoleCustomer)
	require.NoError(t, err)
	_, err = auth.Register(ctx, "John", "john@example.com", "john-pass-123", model.RoleCustomer)
	require.NoError(t, err)

	_, err = auth.StartOTPReset(ctx, "jane@example.com")
	require.NoError(t, err)
	janeCode := codeRe.FindStringSubmatch(mail.last(t).Text)[1]

	// Jane's code must not reset John's password.
	err = auth.ResetPasswordOTP(ctx, "john@example.com", janeCode, "stolen-pass-1")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	got, err := auth.Authenticate(ctx, "john@example.com", "john-pass-123")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSessionLifecycle(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, "Jane", "jane@example.com", "hunter2secret", model.RoleCustomer)
	require.NoError(t, err)

	sess, err := auth.IssueSession(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)
	assert.False(t, strings.Contains(sess.AccessToken, sess.RefreshToken))

	// Rotation invalidates the old refresh token.
	next, nu, err := auth.RefreshSession(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, nu.ID)
	_, _, err = auth.RefreshSession(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// AccessTokenFor leaves the refresh token usable.
	_, err = auth.AccessTokenFor(ctx, next.RefreshToken)
	require.NoError(t, err)
	_, err = auth.AccessTokenFor(ctx, next.RefreshToken)
	require.NoError(t, err)

	// Logout kills it; logging out twice is fine.
	require.NoError(t, auth.Logout(ctx, next.RefreshToken))
	_, err = auth.AccessTokenFor(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	require.NoError(t, auth.Logout(ctx, next.RefreshToken))
}

func TestStartPasswordResetMailerFailure(t *testing.T) {
	auth, _, mail := newAuthFixture(t)
	mail.fail = true
	ctx := context.Background()

	_, err := auth.Register(ctx, "Jane", "jane@example.com", "hunter2secret", model.RoleCustomer)
	require.NoError(t, err)

	// The token is created either way; only the send outcome differs.
	sent, err := auth.StartPasswordReset(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.False(t, sent)
	raw := tokenRe.FindStringSubmatch(mail.last(t).Text)[1]
	owner, err := auth.ValidateResetToken(ctx, raw)
	require.NoError(t, err)
	assert.NotNil(t, owner)
}
