package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/postscript/internal/dbx"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/assets"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/heartbeats"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/legacyrecords"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/recipients"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Assets(db dbx.DBTX) assets.Repository
	Recipients(db dbx.DBTX) recipients.Repository
	Heartbeats(db dbx.DBTX) heartbeats.Repository
	LegacyRecords(db dbx.DBTX) legacyrecords.Repository
}
