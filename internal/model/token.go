// Package model defines domain entities for the application.
package model

import "time"

// AuthToken represents a stored bearer token. The plaintext is returned to
// the client exactly once at issuance; only the argon2id hash survives.
type AuthToken struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"user_id"`
	TokenHash   string     `json:"-"` // Never serialize
	TokenPrefix string     `json:"token_prefix"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsExpired returns true if the token has time-based expiry and it has passed.
func (t *AuthToken) IsExpired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}
