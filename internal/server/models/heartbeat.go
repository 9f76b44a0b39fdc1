package models

import (
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
)

// Frequency is how often a user is expected to check in.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

const (
	DefaultFrequency       = FrequencyWeekly
	DefaultGracePeriodDays = 7
)

// Days maps a frequency to its canonical day count. Unknown values fall back
// to the weekly default so a corrupted row degrades safely.
func (f Frequency) Days() int {
	switch f {
	case FrequencyDaily:
		return 1
	case FrequencyMonthly:
		return 30
	default:
		return 7
	}
}

// Valid reports whether f is one of the accepted frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// ValidGracePeriod reports whether days is one of the accepted grace periods.
func ValidGracePeriod(days int) bool {
	return days == 7 || days == 14 || days == 30
}

// HeartbeatConfig holds a user's check-in schedule. One row per user, created
// with defaults at account creation and mutable only through an explicit
// update.
type HeartbeatConfig struct {
	UserID          string
	Frequency       Frequency
	GracePeriodDays int
	UpdatedAt       time.Time
}

// DefaultHeartbeatConfig returns the weekly/7-day config seeded for new users.
func DefaultHeartbeatConfig(userID string) *HeartbeatConfig {
	return &HeartbeatConfig{
		UserID:          userID,
		Frequency:       DefaultFrequency,
		GracePeriodDays: DefaultGracePeriodDays,
	}
}

// Validate checks the frequency and grace-period value sets.
func (c *HeartbeatConfig) Validate() error {
	if !c.Frequency.Valid() {
		return common.ErrInvalidFrequency
	}
	if !ValidGracePeriod(c.GracePeriodDays) {
		return common.ErrInvalidGracePeriod
	}
	return nil
}
