package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/dbx"
	"github.com/dmitrijs2005/postscript/internal/server/models"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/repomanager"
)

// AssetService manages user assets. Payloads are sealed through the crypto
// service on the way in and unsealed on the way out; the database only ever
// sees envelope strings.
type AssetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	crypto      *CryptoService
}

func NewAssetService(db *sql.DB, rm repomanager.RepositoryManager, crypto *CryptoService) *AssetService {
	return &AssetService{db: db, repomanager: rm, crypto: crypto}
}

// CreateAssetInput carries the plaintext fields of a new asset. Data and Hint
// are encrypted before anything is stored.
type CreateAssetInput struct {
	Type         models.AssetType
	Name         string
	Data         string
	Hint         *string
	RecipientIDs []string
}

// UpdateAssetInput carries a partial asset update. Nil fields are left
// unchanged; a non-nil RecipientIDs replaces the link set entirely.
type UpdateAssetInput struct {
	Name         *string
	Data         *string
	Hint         *string
	RecipientIDs []string
}

// AssetDetail is an asset with its payload decrypted for the caller.
type AssetDetail struct {
	Asset *models.Asset
	Data  string
	Hint  *string
}

// AssetListItem is asset metadata plus its linked recipients. No decryption
// happens on the list path, so no caller share is needed.
type AssetListItem struct {
	Asset      *models.Asset
	Recipients []*models.Recipient
}

// Create seals the payload and stores the asset with its recipient links in
// one transaction.
func (s *AssetService) Create(ctx context.Context, userID, callerShare string, in *CreateAssetInput) (*models.Asset, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown asset type %q", common.ErrInvalidInput, in.Type)
	}
	if in.Name == "" || in.Data == "" {
		return nil, fmt.Errorf("%w: name and data are required", common.ErrInvalidInput)
	}

	encrypted, err := s.crypto.EncryptForStorage(callerShare, in.Data, userID)
	if err != nil {
		return nil, err
	}

	var encryptedHint *string
	if in.Hint != nil && *in.Hint != "" {
		h, err := s.crypto.EncryptForStorage(callerShare, *in.Hint, userID)
		if err != nil {
			return nil, err
		}
		encryptedHint = &h
	}

	now := time.Now()
	asset := &models.Asset{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          in.Type,
		Name:          in.Name,
		EncryptedData: encrypted,
		EncryptedHint: encryptedHint,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Assets(tx)
		if err := repo.Create(ctx, asset); err != nil {
			return err
		}
		return repo.LinkRecipients(ctx, asset.ID, in.RecipientIDs)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Get returns one asset with its payload decrypted.
func (s *AssetService) Get(ctx context.Context, userID, callerShare, id string) (*AssetDetail, error) {
	asset, err := s.repomanager.Assets(s.db).GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	data, err := s.crypto.DecryptFromStorage(callerShare, asset.EncryptedData, userID)
	if err != nil {
		return nil, err
	}

	detail := &AssetDetail{Asset: asset, Data: data}
	if asset.EncryptedHint != nil {
		hint, err := s.crypto.DecryptFromStorage(callerShare, *asset.EncryptedHint, userID)
		if err != nil {
			return nil, err
		}
		detail.Hint = &hint
	}
	return detail, nil
}

// List returns the user's asset metadata with linked recipients.
func (s *AssetService) List(ctx context.Context, userID string) ([]*AssetListItem, error) {
	repo := s.repomanager.Assets(s.db)

	assets, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*AssetListItem, 0, len(assets))
	for _, a := range assets {
		linked, err := repo.ListLinkedRecipients(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, &AssetListItem{Asset: a, Recipients: linked})
	}
	return items, nil
}

// Update applies a partial update. Changing Data or Hint re-seals under a
// fresh salt and DEK.
func (s *AssetService) Update(ctx context.Context, userID, callerShare, id string, in *UpdateAssetInput) (*models.Asset, error) {
	asset, err := s.repomanager.Assets(s.db).GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		asset.Name = *in.Name
	}
	if in.Data != nil {
		encrypted, err := s.crypto.EncryptForStorage(callerShare, *in.Data, userID)
		if err != nil {
			return nil, err
		}
		asset.EncryptedData = encrypted
	}
	if in.Hint != nil {
		if *in.Hint == "" {
			asset.EncryptedHint = nil
		} else {
			h, err := s.crypto.EncryptForStorage(callerShare, *in.Hint, userID)
			if err != nil {
				return nil, err
			}
			asset.EncryptedHint = &h
		}
	}
	asset.UpdatedAt = time.Now()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Assets(tx)
		if err := repo.Update(ctx, asset); err != nil {
			return err
		}
		if in.RecipientIDs == nil {
			return nil
		}
		if err := repo.UnlinkRecipients(ctx, asset.ID); err != nil {
			return err
		}
		return repo.LinkRecipients(ctx, asset.ID, in.RecipientIDs)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Delete removes the asset. Links go with it via the FK cascade.
func (s *AssetService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Assets(s.db).Delete(ctx, id, userID)
}
