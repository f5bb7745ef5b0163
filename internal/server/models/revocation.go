package models

import "time"

// RevocationEntry marks a previously issued token as no longer honored.
// Entries are written once and never mutated; ExpiresAt carries the token's
// original expiry so that an entry can be swept once it can no longer matter.
type RevocationEntry struct {
	TokenID   string
	UserID    int64
	Kind      string
	Reason    string
	RevokedAt time.Time
	ExpiresAt time.Time
}
