// Package config loads application configuration from environment
// variables. The database block is optional: when DB_HOST is unset
// the server runs on the in-memory store, which is the zero-config
// dev mode. Secrets and tunables follow the same env-var-per-field
// convention throughout.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Types reflect how
// the values are used: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	// Database. Empty DBHost selects the in-memory backend.
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	ResetTokenTTL time.Duration // password reset link validity
	OTPTTL        time.Duration // OTP code validity

	// SMTP relay for transactional mail. Empty host disables sending.
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	// PublicBaseURL is embedded in password-reset links.
	PublicBaseURL string

	// Bootstrap admin, seeded on first run when both values are set.
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment. JWT_SECRET is the
// only hard requirement; everything else has a dev-friendly default.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		DBUser:         os.Getenv("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         envStr("DB_PORT", "3306"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		ResetTokenTTL:  envDur("RESET_TOKEN_TTL", 60*time.Minute),
		OTPTTL:         envDur("OTP_TTL", 10*time.Minute),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       envStr("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		MailFrom:       envStr("MAIL_FROM", "no-reply@brightline.agency"),
		PublicBaseURL:  envStr("PUBLIC_BASE_URL", "http://localhost:8080"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
}

// UseDatabase reports whether the relational backend is configured.
func (c Config) UseDatabase() bool { return c.DBHost != "" }

// must retrieves the value of a required environment variable. If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
