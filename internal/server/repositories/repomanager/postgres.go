// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/postscript/internal/dbx"
	"github.com/dmitrijs2005/postscript/internal/server/migrations"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/assets"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/heartbeats"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/legacyrecords"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/recipients"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Assets returns an assets.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Assets(db dbx.DBTX) assets.Repository {
	return assets.NewPostgresRepository(db)
}

// Recipients returns a recipients.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Recipients(db dbx.DBTX) recipients.Repository {
	return recipients.NewPostgresRepository(db)
}

// Heartbeats returns a heartbeats.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Heartbeats(db dbx.DBTX) heartbeats.Repository {
	return heartbeats.NewPostgresRepository(db)
}

// LegacyRecords returns a legacyrecords.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) LegacyRecords(db dbx.DBTX) legacyrecords.Repository {
	return legacyrecords.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
