package model

import "time"

// Role names stored in users.role. Staff roles (admin, manager) gate
// the back-office; user and customer are end-user roles.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleUser     = "user"
	RoleCustomer = "customer"
)

// IsStaff reports whether the role belongs to back-office staff.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// ValidRole reports whether the role is one of the known role names.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleUser, RoleCustomer:
		return true
	}
	return false
}

// User represents an application user record as stored in the
// `users` table. The password is kept only as a bcrypt hash and is
// never serialized; handlers define separate response types with
// the fields they expose.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (admin, manager, user, customer).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Name         string    `json:"name"`       // users.name
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash, never serialized
	Role         string    `json:"role"`       // users.role
	IsActive     bool      `json:"is_active"`  // users.is_active
	CreatedAt    time.Time `json:"created_at"` // users.created_at
	UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries expiry and revocation
// metadata. The plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     `json:"id"`         // refresh_tokens.id
	UserID    uint64     `json:"user_id"`    // refresh_tokens.user_id
	TokenHash string     `json:"-"`          // refresh_tokens.token_hash
	ExpiresAt time.Time  `json:"expires_at"` // refresh_tokens.expires_at
	RevokedAt *time.Time `json:"revoked_at"` // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  `json:"created_at"` // refresh_tokens.created_at
}
