// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the display name, falling back to the email address
// when both name parts are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// NormalizeEmail canonicalizes an address for storage: surrounding
// whitespace is trimmed and the domain part is lowercased. The local part
// keeps its case; uniqueness is enforced case-insensitively at the
// database layer regardless.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID  int64
	TokenID string
	Email   string
	IsStaff bool
	// CacheKey is the cache address of this context; deleting it makes a
	// token revocation take effect immediately.
	CacheKey string
}
