package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/server/models"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/repomanager"
)

// RecipientService manages a user's designated recipients. Recipient data is
// plain contact metadata, so no crypto is involved here.
type RecipientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecipientService(db *sql.DB, rm repomanager.RepositoryManager) *RecipientService {
	return &RecipientService{db: db, repomanager: rm}
}

type RecipientInput struct {
	Name         string
	Email        string
	Relationship *string
	AvatarURL    *string
}

func (s *RecipientService) Create(ctx context.Context, userID string, in *RecipientInput) (*models.Recipient, error) {
	if in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", common.ErrInvalidInput)
	}

	r := &models.Recipient{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         in.Name,
		Email:        in.Email,
		Relationship: in.Relationship,
		AvatarURL:    in.AvatarURL,
		CreatedAt:    time.Now(),
	}
	if err := s.repomanager.Recipients(s.db).Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipientService) Get(ctx context.Context, userID, id string) (*models.Recipient, error) {
	return s.repomanager.Recipients(s.db).GetByID(ctx, id, userID)
}

func (s *RecipientService) List(ctx context.Context, userID string) ([]*models.Recipient, error) {
	return s.repomanager.Recipients(s.db).ListByUser(ctx, userID)
}

func (s *RecipientService) Update(ctx context.Context, userID, id string, in *RecipientInput) (*models.Recipient, error) {
	repo := s.repomanager.Recipients(s.db)

	r, err := repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		r.Name = in.Name
	}
	if in.Email != "" {
		r.Email = in.Email
	}
	if in.Relationship != nil {
		r.Relationship = in.Relationship
	}
	if in.AvatarURL != nil {
		r.AvatarURL = in.AvatarURL
	}

	if err := repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipientService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Recipients(s.db).Delete(ctx, id, userID)
}
