package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/postscript/internal/dbx"
	"github.com/dmitrijs2005/postscript/internal/server/models"
	assetsrepo "github.com/dmitrijs2005/postscript/internal/server/repositories/assets"
	heartbeatsrepo "github.com/dmitrijs2005/postscript/internal/server/repositories/heartbeats"
	legacyrecordsrepo "github.com/dmitrijs2005/postscript/internal/server/repositories/legacyrecords"
	recipientsrepo "github.com/dmitrijs2005/postscript/internal/server/repositories/recipients"
	usersrepo "github.com/dmitrijs2005/postscript/internal/server/repositories/users"
)

// -------- shared test fakes --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	usersrepo.Repository

	getByID *models.User
	getErr  error

	heartbeatErr error
	heartbeatTS  time.Time

	candidates []*usersrepo.SweepCandidate
	candErr    error
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getByID, nil
}

func (f *fakeUsersRepo) UpdateLastHeartbeat(ctx context.Context, userID string, ts time.Time) error {
	if f.heartbeatErr != nil {
		return f.heartbeatErr
	}
	f.heartbeatTS = ts
	return nil
}

func (f *fakeUsersRepo) SelectSweepCandidates(ctx context.Context) ([]*usersrepo.SweepCandidate, error) {
	return f.candidates, f.candErr
}

type fakeHeartbeatsRepo struct {
	getOut *models.HeartbeatConfig
	getErr error

	upserted  *models.HeartbeatConfig
	upsertErr error
}

func (f *fakeHeartbeatsRepo) Get(ctx context.Context, userID string) (*models.HeartbeatConfig, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeHeartbeatsRepo) Upsert(ctx context.Context, config *models.HeartbeatConfig) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = config
	return nil
}

type fakeLegacyRecordsRepo struct {
	latest    *models.LegacyRecord
	latestErr error

	hasDelivered    bool
	hasDeliveredErr error

	deliveredWon bool
	deliveredErr error
	delivered    []*models.LegacyRecord

	insertCountdownErr error
	countdowns         []*models.LegacyRecord

	markErr   error
	markedIDs []string

	revertErr error
	reverted  []string
}

func (f *fakeLegacyRecordsRepo) GetLatest(ctx context.Context, userID string) (*models.LegacyRecord, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeLegacyRecordsRepo) HasDelivered(ctx context.Context, userID string) (bool, error) {
	return f.hasDelivered, f.hasDeliveredErr
}

func (f *fakeLegacyRecordsRepo) InsertDelivered(ctx context.Context, record *models.LegacyRecord) (bool, error) {
	if f.deliveredErr != nil {
		return false, f.deliveredErr
	}
	f.delivered = append(f.delivered, record)
	return f.deliveredWon, nil
}

func (f *fakeLegacyRecordsRepo) InsertCountdown(ctx context.Context, record *models.LegacyRecord) error {
	if f.insertCountdownErr != nil {
		return f.insertCountdownErr
	}
	f.countdowns = append(f.countdowns, record)
	return nil
}

func (f *fakeLegacyRecordsRepo) MarkCountdown(ctx context.Context, id string, startedAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedIDs = append(f.markedIDs, id)
	return nil
}

func (f *fakeLegacyRecordsRepo) RevertCountdown(ctx context.Context, userID string) error {
	if f.revertErr != nil {
		return f.revertErr
	}
	f.reverted = append(f.reverted, userID)
	return nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	h  *fakeHeartbeatsRepo
	lr *fakeLegacyRecordsRepo
	a  assetsrepo.Repository
	r  recipientsrepo.Repository

	// lrCustom, when set, is vended instead of lr.
	lrCustom legacyrecordsrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Assets(db dbx.DBTX) assetsrepo.Repository     { return m.a }
func (m *fakeRepoManager) Recipients(db dbx.DBTX) recipientsrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) Heartbeats(db dbx.DBTX) heartbeatsrepo.Repository {
	return m.h
}
func (m *fakeRepoManager) LegacyRecords(db dbx.DBTX) legacyrecordsrepo.Repository {
	if m.lrCustom != nil {
		return m.lrCustom
	}
	return m.lr
}
