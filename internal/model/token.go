package model

import "time"

// LoginToken is a single-use magic-link capability. Only the blake2b digest
// of the token is stored; the plaintext lives solely in the emailed link.
type LoginToken struct {
	ID        string
	TokenHash string
	Email     string
	UserID    *string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *LoginToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
