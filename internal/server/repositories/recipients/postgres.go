// Package recipients provides the PostgreSQL-backed repository for a user's
// designated receivers.
package recipients

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

func (r *PostgresRepository) Create(ctx context.Context, recipient *models.Recipient) error {
	query := `
		INSERT INTO recipients (id, user_id, name, email, relationship, avatar_url, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		recipient.ID, recipient.UserID, recipient.Name, recipient.Email,
		recipient.Relationship, recipient.AvatarURL, recipient.Verified)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Recipient, error) {
	query := `
		SELECT id, user_id, name, email, relationship, avatar_url, verified, created_at
		FROM recipients
		WHERE id = $1 AND user_id = $2
	`
	recipient := &models.Recipient{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&recipient.ID, &recipient.UserID, &recipient.Name, &recipient.Email,
		&recipient.Relationship, &recipient.AvatarURL, &recipient.Verified, &recipient.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipient, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Recipient, error) {
	query := `
		SELECT id, user_id, name, email, relationship, avatar_url, verified, created_at
		FROM recipients
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipients: %w", err)
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

func (r *PostgresRepository) Update(ctx context.Context, recipient *models.Recipient) error {
	query := `
		UPDATE recipients
		SET name = $1, email = $2, relationship = $3, avatar_url = $4, verified = $5
		WHERE id = $6 AND user_id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		recipient.Name, recipient.Email, recipient.Relationship,
		recipient.AvatarURL, recipient.Verified, recipient.ID, recipient.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM recipients WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
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
