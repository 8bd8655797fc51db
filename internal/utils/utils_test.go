package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightline/agency-server/internal/utils"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("correct horse battery staple", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, utils.VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, utils.VerifyPassword(hash, "wrong password"))
	assert.False(t, utils.VerifyPassword("not-a-hash", "correct horse battery staple"))
}

func TestOpaqueToken(t *testing.T) {
	a, err := utils.NewOpaqueToken(time.Hour)
	require.NoError(t, err)
	b, err := utils.NewOpaqueToken(time.Hour)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 64, "32 random bytes hex-encoded")
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), a.Exp, time.Minute)

	// The stored hash never equals the raw token and is stable.
	h := utils.HashToken(a.Raw)
	assert.NotEqual(t, a.Raw, h)
	assert.Equal(t, h, utils.HashToken(a.Raw))
	assert.NotEqual(t, h, utils.HashToken(b.Raw))
}

func TestNewOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := utils.NewOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q must be numeric", code)
		}
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 42, "manager", 15)
	require.NoError(t, err)

	uid, role, ok := utils.ParseAccessToken("secret", tok.Token)
	require.True(t, ok)
	assert.Equal(t, uint64(42), uid)
	assert.Equal(t, "manager", role)

	// Wrong secret and garbage both fail closed.
	_, _, ok = utils.ParseAccessToken("other-secret", tok.Token)
	assert.False(t, ok)
	_, _, ok = utils.ParseAccessToken("secret", "not.a.jwt")
	assert.False(t, ok)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 42, "customer", -1)
	require.NoError(t, err)

	_, _, ok := utils.ParseAccessToken("secret", tok.Token)
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces  everywhere  ", "spaces-everywhere"},
		{"Already-a-slug", "already-a-slug"},
		{"Symbols & Punctuation!?", "symbols-punctuation"},
		{"CamelCase2024 Launch", "camelcase2024-launch"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.Slugify(tt.in), "Slugify(%q)", tt.in)
	}

	assert.True(t, utils.ValidSlug("hello-world"))
	assert.False(t, utils.ValidSlug("Hello World"))
	assert.False(t, utils.ValidSlug(""))
	assert.False(t, utils.ValidSlug("-leading"))
}
