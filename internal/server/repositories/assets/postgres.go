// Package assets provides the PostgreSQL-backed repository for encrypted
// asset rows and their recipient links.
package assets

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

func (r *PostgresRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, user_id, type, name, encrypted_data, encrypted_hint)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.UserID, asset.Type, asset.Name, asset.EncryptedData, asset.EncryptedHint)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Asset, error) {
	query := `
		SELECT id, user_id, type, name, encrypted_data, encrypted_hint, created_at, updated_at
		FROM assets
		WHERE id = $1 AND user_id = $2
	`
	asset := &models.Asset{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&asset.ID, &asset.UserID, &asset.Type, &asset.Name,
		&asset.EncryptedData, &asset.EncryptedHint, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return asset, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Asset, error) {
	query := `
		SELECT id, user_id, type, name, encrypted_data, encrypted_hint, created_at, updated_at
		FROM assets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}
	defer rows.Close()

	var result []*models.Asset
	for rows.Next() {
		var item models.Asset
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Type, &item.Name,
			&item.EncryptedData, &item.EncryptedHint, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the mutable fields of an asset owned by asset.UserID.
func (r *PostgresRepository) Update(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE assets
		SET name = $1, encrypted_data = $2, encrypted_hint = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		asset.Name, asset.EncryptedData, asset.EncryptedHint, asset.ID, asset.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM assets WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// LinkRecipients attaches recipients to an asset. The encrypted_password
// column stays NULL until recipient-side decryption is an actual capability.
func (r *PostgresRepository) LinkRecipients(ctx context.Context, assetID string, recipientIDs []string) error {
	query := `
		INSERT INTO asset_recipients (asset_id, recipient_id)
		VALUES ($1, $2)
		ON CONFLICT (asset_id, recipient_id) DO NOTHING
	`
	for _, recipientID := range recipientIDs {
		if _, err := r.db.ExecContext(ctx, query, assetID, recipientID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) UnlinkRecipients(ctx context.Context, assetID string) error {
	query := `DELETE FROM asset_recipients WHERE asset_id = $1`

	if _, err := r.db.ExecContext(ctx, query, assetID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListLinkedRecipients(ctx context.Context, assetID string) ([]*models.Recipient, error) {
	query := `
		SELECT r.id, r.user_id, r.name, r.email, r.relationship, r.avatar_url, r.verified, r.created_at
		FROM recipients r
		JOIN asset_recipients ar ON ar.recipient_id = r.id
		WHERE ar.asset_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to select linked recipients: %w", err)
	}
	defer rows.Close()

	var result []*models.Recipient
	for rows.Next() {
		var item models.Recipient
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &item.Email,
			&item.Relationship, &item.AvatarURL, &item.Verified, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
