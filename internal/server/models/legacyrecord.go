package models

import (
	"fmt"
	"time"
)

// LegacyStatus is the lifecycle state of a user's release record.
type LegacyStatus string

const (
	// StatusActive: the user is checking in on schedule.
	StatusActive LegacyStatus = "active"
	// StatusCountdown: the check-in deadline was missed; the grace period is
	// running.
	StatusCountdown LegacyStatus = "countdown"
	// StatusDelivered: assets were released. Terminal — no transition ever
	// leaves this state.
	StatusDelivered LegacyStatus = "delivered"
)

// Valid reports whether s is a known lifecycle state.
func (s LegacyStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCountdown, StatusDelivered:
		return true
	}
	return false
}

// LegacyRecord tracks one user's progress toward asset release.
// CountdownStartedAt is set only while Status is countdown; DeliveredAt only
// when Status is delivered. Validate enforces that pairing.
type LegacyRecord struct {
	ID                 string
	UserID             string
	Status             LegacyStatus
	CountdownStartedAt *time.Time
	DeliveredAt        *time.Time
	CreatedAt          time.Time
}

// NewCountdownRecord builds a record entering the grace period at now.
func NewCountdownRecord(id, userID string, now time.Time) *LegacyRecord {
	return &LegacyRecord{
		ID:                 id,
		UserID:             userID,
		Status:             StatusCountdown,
		CountdownStartedAt: &now,
		CreatedAt:          now,
	}
}

// NewDeliveredRecord builds a terminal delivered record stamped at now.
func NewDeliveredRecord(id, userID string, now time.Time) *LegacyRecord {
	return &LegacyRecord{
		ID:          id,
		UserID:      userID,
		Status:      StatusDelivered,
		DeliveredAt: &now,
		CreatedAt:   now,
	}
}

// Validate checks the status/timestamp invariant: the two timestamps are only
// meaningful in their respective states.
func (r *LegacyRecord) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	if r.Status == StatusCountdown && r.CountdownStartedAt == nil {
		return fmt.Errorf("countdown record without countdown_started_at")
	}
	if r.Status != StatusCountdown && r.CountdownStartedAt != nil {
		return fmt.Errorf("countdown_started_at set in status %q", r.Status)
	}
	if r.Status == StatusDelivered && r.DeliveredAt == nil {
		return fmt.Errorf("delivered record without delivered_at")
	}
	if r.Status != StatusDelivered && r.DeliveredAt != nil {
		return fmt.Errorf("delivered_at set in status %q", r.Status)
	}
	return nil
}
