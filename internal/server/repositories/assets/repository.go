package assets

import (
	"context"

	"github.com/dmitrijs2005/postscript/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id, userID string) (*models.Asset, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) error
	Delete(ctx context.Context, id, userID string) error
	LinkRecipients(ctx context.Context, assetID string, recipientIDs []string) error
	UnlinkRecipients(ctx context.Context, assetID string) error
	ListLinkedRecipients(ctx context.Context, assetID string) ([]*models.Recipient, error)
}
