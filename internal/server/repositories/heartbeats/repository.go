package heartbeats

import (
	"context"

	"github.com/dmitrijs2005/postscript/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.HeartbeatConfig, error)
	Upsert(ctx context.Context, config *models.HeartbeatConfig) error
}
