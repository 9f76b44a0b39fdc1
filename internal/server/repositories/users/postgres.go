// Package users provides the PostgreSQL-backed repository for account rows
// and the sweep candidate query.
package users

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

// Create inserts a user and seeds last_heartbeat to the creation time so the
// lifecycle clock starts immediately.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, apple_id, last_heartbeat)
		VALUES ($1, $2, now())
		RETURNING id, created_at, last_heartbeat
	`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.AppleID).
		Scan(&user.ID, &user.CreatedAt, &user.LastHeartbeat)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, apple_id, created_at, last_heartbeat FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, apple_id, created_at, last_heartbeat FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.AppleID, &user.CreatedAt, &user.LastHeartbeat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// UpdateLastHeartbeat records a check-in time.
func (r *PostgresRepository) UpdateLastHeartbeat(ctx context.Context, userID string, ts time.Time) error {
	query := `UPDATE users SET last_heartbeat = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, ts, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// SelectSweepCandidates returns every user with a recorded heartbeat, joined
// with their heartbeat config when one exists.
func (r *PostgresRepository) SelectSweepCandidates(ctx context.Context) ([]*SweepCandidate, error) {
	query := `
		SELECT u.id, u.email, u.last_heartbeat, h.frequency, h.grace_period
		FROM users u
		LEFT JOIN heartbeat_config h ON h.user_id = u.id
		WHERE u.last_heartbeat IS NOT NULL
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select sweep candidates: %w", err)
	}
	defer rows.Close()

	var result []*SweepCandidate
	for rows.Next() {
		var item SweepCandidate
		var freq sql.NullString
		var grace sql.NullInt64
		if err := rows.Scan(&item.UserID, &item.Email, &item.LastHeartbeat, &freq, &grace); err != nil {
			return nil, err
		}
		if freq.Valid {
			f := models.Frequency(freq.String)
			item.Frequency = &f
		}
		if grace.Valid {
			g := int(grace.Int64)
			item.GracePeriodDays = &g
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
