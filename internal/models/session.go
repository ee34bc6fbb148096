package models

import "time"

// Session represents an authenticated user session. Sessions are only ever
// deactivated, never deleted, so token hashes stay unique for all time.
type Session struct {
	TokenHash string    `json:"-"` // Never expose in JSON
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
