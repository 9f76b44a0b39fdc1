// Package heartbeats provides the PostgreSQL-backed repository for per-user
// heartbeat configuration.
package heartbeats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.HeartbeatConfig, error) {
	query := `
		SELECT user_id, frequency, grace_period, updated_at FROM heartbeat_config
		WHERE user_id = $1
	`
	config := &models.HeartbeatConfig{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&config.UserID, &config.Frequency, &config.GracePeriodDays, &config.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return config, nil
}

// Upsert writes the config row for a user, creating it on first update.
func (r *PostgresRepository) Upsert(ctx context.Context, config *models.HeartbeatConfig) error {
	query := `
		INSERT INTO heartbeat_config (user_id, frequency, grace_period, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			frequency = EXCLUDED.frequency,
			grace_period = EXCLUDED.grace_period,
			updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query, config.UserID, config.Frequency, config.GracePeriodDays)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
