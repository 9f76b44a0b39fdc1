// Package models defines the server-side domain types persisted by the
// repositories.
package models

import "time"

// User is an account owner. LastHeartbeat is nil only for accounts that have
// never been seeded with a check-in; account creation seeds it to the
// creation time.
type User struct {
	ID            string
	Email         string
	AppleID       *string
	CreatedAt     time.Time
	LastHeartbeat *time.Time
}
