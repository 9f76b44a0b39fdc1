package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/dbx"
	"github.com/dmitrijs2005/postscript/internal/server/models"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/repomanager"
)

// Status is the user-facing heartbeat state. warning is a softer overlay on
// active when two or fewer days remain; it is never persisted.
type Status string

const (
	StatusActive    Status = "active"
	StatusWarning   Status = "warning"
	StatusCountdown Status = "countdown"
	StatusDelivered Status = "delivered"
)

const day = 24 * time.Hour

// HeartbeatStatus is the read-path projection of a user's lifecycle state.
type HeartbeatStatus struct {
	Status          Status
	LastHeartbeat   time.Time
	RemainingDays   int
	NextDue         time.Time
	FinalDeadline   time.Time
	Frequency       models.Frequency
	GracePeriodDays int
}

// HeartbeatService implements check-ins, the status read path, and heartbeat
// configuration. Together with the sweep it is the only writer of lifecycle
// state.
type HeartbeatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewHeartbeatService(db *sql.DB, rm repomanager.RepositoryManager) *HeartbeatService {
	return &HeartbeatService{db: db, repomanager: rm}
}

// RecordCheckIn stamps the user's last heartbeat and, if a countdown is in
// progress, reverts it to active. A delivered record is never reverted:
// once assets are released, a late check-in cannot erase that fact.
func (s *HeartbeatService) RecordCheckIn(ctx context.Context, userID string, now time.Time) (time.Time, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdateLastHeartbeat(ctx, userID, now); err != nil {
			return err
		}
		return s.repomanager.LegacyRecords(tx).RevertCountdown(ctx, userID)
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("check-in failed: %w", err)
	}
	return now, nil
}

// GetStatus derives the current state from the last heartbeat and the user's
// schedule without mutating anything. The countdown/remaining-0 branch covers
// the window between a missed final deadline and the next sweep.
func (s *HeartbeatService) GetStatus(ctx context.Context, userID string, now time.Time) (*HeartbeatStatus, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	config, err := s.GetConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	frequencyDays := config.Frequency.Days()
	graceDays := config.GracePeriodDays

	lastHeartbeat := now
	if user.LastHeartbeat != nil {
		lastHeartbeat = *user.LastHeartbeat
	}

	result := &HeartbeatStatus{
		LastHeartbeat:   lastHeartbeat,
		NextDue:         lastHeartbeat.Add(time.Duration(frequencyDays) * day),
		FinalDeadline:   lastHeartbeat.Add(time.Duration(frequencyDays+graceDays) * day),
		Frequency:       config.Frequency,
		GracePeriodDays: graceDays,
	}

	// delivery is terminal and outranks any time-derived state
	delivered, err := s.repomanager.LegacyRecords(s.db).HasDelivered(ctx, userID)
	if err != nil {
		return nil, err
	}
	if delivered {
		result.Status = StatusDelivered
		result.RemainingDays = 0
		return result, nil
	}

	daysSince := int(now.Sub(lastHeartbeat) / day)

	switch {
	case daysSince < frequencyDays:
		result.Status = StatusActive
		result.RemainingDays = frequencyDays - daysSince
		if result.RemainingDays <= 2 {
			result.Status = StatusWarning
		}
	case daysSince < frequencyDays+graceDays:
		result.Status = StatusCountdown
		result.RemainingDays = frequencyDays + graceDays - daysSince
	default:
		// past the final deadline but the sweep has not run yet
		result.Status = StatusCountdown
		result.RemainingDays = 0
	}

	return result, nil
}

// GetConfig returns the user's heartbeat config, or the weekly/7 defaults
// when no row exists.
func (s *HeartbeatService) GetConfig(ctx context.Context, userID string) (*models.HeartbeatConfig, error) {
	config, err := s.repomanager.Heartbeats(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.DefaultHeartbeatConfig(userID), nil
		}
		return nil, err
	}
	return config, nil
}

// UpdateConfig applies a partial config update. Values outside the accepted
// sets are rejected before anything is written, so a failed update leaves no
// state change.
func (s *HeartbeatService) UpdateConfig(ctx context.Context, userID string, frequency *models.Frequency, gracePeriodDays *int) (*models.HeartbeatConfig, error) {
	if frequency != nil && !frequency.Valid() {
		return nil, common.ErrInvalidFrequency
	}
	if gracePeriodDays != nil && !models.ValidGracePeriod(*gracePeriodDays) {
		return nil, common.ErrInvalidGracePeriod
	}

	config, err := s.GetConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	if frequency != nil {
		config.Frequency = *frequency
	}
	if gracePeriodDays != nil {
		config.GracePeriodDays = *gracePeriodDays
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := s.repomanager.Heartbeats(s.db).Upsert(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}
