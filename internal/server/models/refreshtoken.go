package models

import "time"

// RefreshToken is a persisted refresh token. Once Revoked is set it is never
// cleared.
type RefreshToken struct {
	ID        int64
	UserID    string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
