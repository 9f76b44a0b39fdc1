// Package legacyrecords provides the PostgreSQL-backed repository for
// lifecycle release records.
//
// All state transitions are conditional single-row statements, so the sweep
// and interactive check-ins can interleave in any order without taking
// application-level locks: a revert only matches status = 'countdown', and
// delivered inserts are guarded by a partial unique index on the user.
package legacyrecords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/dbx"
	"github.com/dmitrijs2005/postscript/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetLatest(ctx context.Context, userID string) (*models.LegacyRecord, error) {
	query := `
		SELECT id, user_id, status, countdown_started_at, delivered_at, created_at
		FROM legacy_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	record := &models.LegacyRecord{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&record.ID, &record.UserID, &record.Status,
		&record.CountdownStartedAt, &record.DeliveredAt, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) HasDelivered(ctx context.Context, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM legacy_records WHERE user_id = $1 AND status = 'delivered'
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// InsertDelivered relies on idx_legacy_records_one_delivery: a second
// delivered insert for the same user hits the conflict and affects zero rows.
func (r *PostgresRepository) InsertDelivered(ctx context.Context, record *models.LegacyRecord) (bool, error) {
	if record.Status != models.StatusDelivered {
		return false, fmt.Errorf("record %s is not delivered", record.ID)
	}
	if err := record.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO legacy_records (id, user_id, status, delivered_at, created_at)
		VALUES ($1, $2, 'delivered', $3, $4)
		ON CONFLICT (user_id) WHERE status = 'delivered' DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.DeliveredAt, record.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) InsertCountdown(ctx context.Context, record *models.LegacyRecord) error {
	if record.Status != models.StatusCountdown {
		return fmt.Errorf("record %s is not countdown", record.ID)
	}
	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO legacy_records (id, user_id, status, countdown_started_at, created_at)
		VALUES ($1, $2, 'countdown', $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.CountdownStartedAt, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkCountdown(ctx context.Context, id string, startedAt time.Time) error {
	query := `
		UPDATE legacy_records
		SET status = 'countdown', countdown_started_at = $1
		WHERE id = $2 AND status = 'active'
	`
	if _, err := r.db.ExecContext(ctx, query, startedAt, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RevertCountdown(ctx context.Context, userID string) error {
	query := `
		UPDATE legacy_records
		SET status = 'active', countdown_started_at = NULL
		WHERE user_id = $1 AND status = 'countdown'
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
