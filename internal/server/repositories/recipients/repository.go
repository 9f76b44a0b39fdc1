package recipients

import (
	"context"

	"github.com/dmitrijs2005/postscript/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, recipient *models.Recipient) error
	GetByID(ctx context.Context, id, userID string) (*models.Recipient, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Recipient, error)
	Update(ctx context.Context, recipient *models.Recipient) error
	Delete(ctx context.Context, id, userID string) error
}
