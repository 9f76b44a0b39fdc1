package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/postscript/internal/server/models"
)

// SweepCandidate is the per-user row the scheduled evaluator works from:
// the last check-in joined with the (possibly absent) heartbeat config.
// Nil Frequency/GracePeriodDays mean the user has no config row and the
// evaluator applies defaults.
type SweepCandidate struct {
	UserID          string
	Email           string
	LastHeartbeat   time.Time
	Frequency       *models.Frequency
	GracePeriodDays *int
}

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastHeartbeat(ctx context.Context, userID string, ts time.Time) error
	SelectSweepCandidates(ctx context.Context) ([]*SweepCandidate, error)
}
