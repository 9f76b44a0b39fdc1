package services

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/logging"
	"github.com/dmitrijs2005/postscript/internal/server/models"
	"github.com/dmitrijs2005/postscript/internal/server/notifications"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/users"
)

// BundleUploader publishes a user's encrypted assets as a downloadable
// bundle and returns its URL. Implemented by ReleaseService.
type BundleUploader interface {
	UploadBundle(ctx context.Context, userID string) (string, error)
}

// SweepService walks all users on a schedule and applies missed-deadline
// transitions: active to countdown past the check-in deadline, countdown to
// delivered past the grace period. Every transition is conditional SQL, so
// concurrent sweeps and concurrent check-ins resolve in the database rather
// than in process memory.
type SweepService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notifications.Notifier
	uploader    BundleUploader
	logger      logging.Logger
	concurrency int
}

func NewSweepService(db *sql.DB, rm repomanager.RepositoryManager, notifier notifications.Notifier, uploader BundleUploader, logger logging.Logger, concurrency int) *SweepService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SweepService{
		db:          db,
		repomanager: rm,
		notifier:    notifier,
		uploader:    uploader,
		logger:      logger.With("module", "sweep"),
		concurrency: concurrency,
	}
}

// RunScheduledSweep evaluates every user against now and returns the number
// of state transitions applied. One user failing never aborts the sweep;
// the error is logged and the user is retried on the next run. The sweep is
// idempotent: re-running with the same now applies nothing new.
func (s *SweepService) RunScheduledSweep(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.repomanager.Users(s.db).SelectSweepCandidates(ctx)
	if err != nil {
		return 0, err
	}

	var transitions atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, c := range candidates {
		g.Go(func() error {
			changed, err := s.evaluateUser(gctx, c, now)
			if err != nil {
				s.logger.Error(gctx, "sweep: user evaluation failed", "user_id", c.UserID, "error", err)
				return nil
			}
			if changed {
				transitions.Add(1)
			}
			return nil
		})
	}

	_ = g.Wait()

	s.logger.Info(ctx, "sweep complete", "users", len(candidates), "transitions", transitions.Load())
	return int(transitions.Load()), nil
}

func (s *SweepService) evaluateUser(ctx context.Context, c *users.SweepCandidate, now time.Time) (bool, error) {
	frequency := models.DefaultFrequency
	if c.Frequency != nil {
		frequency = *c.Frequency
	}
	graceDays := models.DefaultGracePeriodDays
	if c.GracePeriodDays != nil {
		graceDays = *c.GracePeriodDays
	}

	daysSince := int(now.Sub(c.LastHeartbeat) / day)
	frequencyDays := frequency.Days()

	switch {
	case daysSince >= frequencyDays+graceDays:
		return s.deliver(ctx, c, now)
	case daysSince >= frequencyDays:
		return s.startCountdown(ctx, c, now)
	default:
		return false, nil
	}
}

// deliver makes the delivered record exist for the user. The partial unique
// index on delivered records arbitrates concurrent sweeps; only the winner
// publishes the bundle and notifies.
func (s *SweepService) deliver(ctx context.Context, c *users.SweepCandidate, now time.Time) (bool, error) {
	repo := s.repomanager.LegacyRecords(s.db)

	delivered, err := repo.HasDelivered(ctx, c.UserID)
	if err != nil {
		return false, err
	}
	if delivered {
		return false, nil
	}

	record := models.NewDeliveredRecord(uuid.NewString(), c.UserID, now)
	won, err := repo.InsertDelivered(ctx, record)
	if err != nil {
		return false, err
	}
	if !won {
		// another sweep got there first
		return false, nil
	}

	s.logger.Info(ctx, "final deadline passed, releasing assets", "user_id", c.UserID)

	event := &notifications.ReleaseEvent{UserID: c.UserID, UserEmail: c.Email}

	recipients, err := s.repomanager.Recipients(s.db).ListByUser(ctx, c.UserID)
	if err != nil {
		s.logger.Error(ctx, "release: recipient lookup failed", "user_id", c.UserID, "error", err)
	}
	for _, r := range recipients {
		event.RecipientEmails = append(event.RecipientEmails, r.Email)
	}

	if s.uploader != nil {
		url, err := s.uploader.UploadBundle(ctx, c.UserID)
		if err != nil {
			// the record stands; the bundle can be rebuilt from storage later
			s.logger.Error(ctx, "release: bundle upload failed", "user_id", c.UserID, "error", err)
		} else {
			event.BundleURL = url
		}
	}

	if err := s.notifier.NotifyReleased(ctx, event); err != nil {
		s.logger.Error(ctx, "release: notification failed", "user_id", c.UserID, "error", err)
	}

	return true, nil
}

// startCountdown transitions the user's record into countdown. An already
// running countdown or a delivered record is left alone.
func (s *SweepService) startCountdown(ctx context.Context, c *users.SweepCandidate, now time.Time) (bool, error) {
	repo := s.repomanager.LegacyRecords(s.db)

	latest, err := repo.GetLatest(ctx, c.UserID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return false, err
		}
		record := models.NewCountdownRecord(uuid.NewString(), c.UserID, now)
		if err := repo.InsertCountdown(ctx, record); err != nil {
			return false, err
		}
		return s.notifyCountdown(ctx, c), nil
	}

	switch latest.Status {
	case models.StatusActive:
		if err := repo.MarkCountdown(ctx, latest.ID, now); err != nil {
			return false, err
		}
		return s.notifyCountdown(ctx, c), nil
	default:
		// countdown already running or delivered
		return false, nil
	}
}

func (s *SweepService) notifyCountdown(ctx context.Context, c *users.SweepCandidate) bool {
	s.logger.Info(ctx, "check-in deadline missed, countdown started", "user_id", c.UserID)
	if err := s.notifier.NotifyCountdownStarted(ctx, c.UserID, c.Email); err != nil {
		s.logger.Error(ctx, "countdown notification failed", "user_id", c.UserID, "error", err)
	}
	return true
}
