package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for opaque tokens
    "encoding/hex"  // hex encoding functions
    "fmt"           // zero-padded OTP formatting
    "math/big"      // unbiased random integers for OTP codes
    "time"          // expiration timestamps
)

// OpaqueToken is a random token handed to the client in the clear.
// Only its SHA-256 hash is persisted, so a leaked database cannot be
// replayed against the reset or session endpoints.
type OpaqueToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// NewOpaqueToken returns a cryptographically secure random token and
// its expiration time. It backs both refresh tokens and password
// reset tokens; the caller chooses the TTL.
func NewOpaqueToken(ttl time.Duration) (OpaqueToken, error) {
    raw, err := randomHex(32) // 32 bytes -> 64 hex chars
    if err != nil {
        return OpaqueToken{}, err
    }
    return OpaqueToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(ttl),
    }, nil
}

// HashToken returns the SHA-256 hash of a raw token as a hex string.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// NewOTPCode returns a random six-digit numeric code. Six decimal
// digits keep the code typable while making a blind guess within the
// ten-minute window a one-in-a-million shot per attempt.
func NewOTPCode() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(1000000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%06d", n.Int64()), nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
