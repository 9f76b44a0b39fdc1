package legacyrecords

import (
	"context"
	"time"

	"github.com/dmitrijs2005/postscript/internal/server/models"
)

type Repository interface {
	// GetLatest returns the user's most recent record, or common.ErrorNotFound.
	GetLatest(ctx context.Context, userID string) (*models.LegacyRecord, error)

	// HasDelivered reports whether a terminal delivered record exists.
	HasDelivered(ctx context.Context, userID string) (bool, error)

	// InsertDelivered inserts a delivered record unless one already exists for
	// the user. Returns true when this call created the record — the uniqueness
	// guard lives in the database, so concurrent sweeps cannot both win.
	InsertDelivered(ctx context.Context, record *models.LegacyRecord) (bool, error)

	// InsertCountdown inserts a fresh countdown record.
	InsertCountdown(ctx context.Context, record *models.LegacyRecord) error

	// MarkCountdown moves an existing active record into countdown. A record
	// that is no longer active is left untouched.
	MarkCountdown(ctx context.Context, id string, startedAt time.Time) error

	// RevertCountdown flips the user's countdown record back to active and
	// clears its countdown timestamp. Delivered records are never touched.
	RevertCountdown(ctx context.Context, userID string) error
}
