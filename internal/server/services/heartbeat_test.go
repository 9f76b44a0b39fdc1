package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/server/models"
)

func TestRecordCheckIn_UpdatesHeartbeatAndRevertsCountdown(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, lr: &fakeLegacyRecordsRepo{}}
	s := NewHeartbeatService(db, rm)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	got, err := s.RecordCheckIn(context.Background(), "u1", now)
	if err != nil {
		t.Fatalf("RecordCheckIn error: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("returned timestamp = %v, want %v", got, now)
	}
	if !rm.u.heartbeatTS.Equal(now) {
		t.Errorf("stored heartbeat = %v, want %v", rm.u.heartbeatTS, now)
	}
	if len(rm.lr.reverted) != 1 || rm.lr.reverted[0] != "u1" {
		t.Errorf("reverted = %v, want [u1]", rm.lr.reverted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sqlmock: %v", err)
	}
}

func TestRecordCheckIn_UnknownUserRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u:  &fakeUsersRepo{heartbeatErr: common.ErrorNotFound},
		lr: &fakeLegacyRecordsRepo{},
	}
	s := NewHeartbeatService(db, rm)

	_, err := s.RecordCheckIn(context.Background(), "nobody", time.Now())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("err = %v, want ErrorNotFound", err)
	}
	if len(rm.lr.reverted) != 0 {
		t.Errorf("revert must not run after a failed heartbeat update")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sqlmock: %v", err)
	}
}

func heartbeatRM(last time.Time, cfg *models.HeartbeatConfig, delivered bool) *fakeRepoManager {
	return &fakeRepoManager{
		u:  &fakeUsersRepo{getByID: &models.User{ID: "u1", Email: "a@b.c", LastHeartbeat: &last}},
		h:  &fakeHeartbeatsRepo{getOut: cfg, getErr: configErr(cfg)},
		lr: &fakeLegacyRecordsRepo{hasDelivered: delivered},
	}
}

func configErr(cfg *models.HeartbeatConfig) error {
	if cfg == nil {
		return common.ErrorNotFound
	}
	return nil
}

func TestGetStatus_Transitions(t *testing.T) {
	last := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	weekly := &models.HeartbeatConfig{UserID: "u1", Frequency: models.FrequencyWeekly, GracePeriodDays: 7}

	tests := []struct {
		name          string
		now           time.Time
		cfg           *models.HeartbeatConfig
		delivered     bool
		wantStatus    Status
		wantRemaining int
	}{
		{"fresh check-in", last.Add(1 * time.Hour), weekly, false, StatusActive, 7},
		{"mid window", last.Add(3 * day), weekly, false, StatusActive, 4},
		{"two days left is warning", last.Add(5 * day), weekly, false, StatusWarning, 2},
		{"one day left is warning", last.Add(6 * day), weekly, false, StatusWarning, 1},
		{"deadline missed starts countdown", last.Add(7 * day), weekly, false, StatusCountdown, 7},
		{"deep in grace period", last.Add(12 * day), weekly, false, StatusCountdown, 2},
		{"past final deadline before sweep", last.Add(20 * day), weekly, false, StatusCountdown, 0},
		{"delivered outranks everything", last.Add(1 * time.Hour), weekly, true, StatusDelivered, 0},
		{"no config falls back to weekly defaults", last.Add(3 * day), nil, false, StatusActive, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newSQLMockDB(t)
			defer db.Close()

			s := NewHeartbeatService(db, heartbeatRM(last, tt.cfg, tt.delivered))
			got, err := s.GetStatus(context.Background(), "u1", tt.now)
			if err != nil {
				t.Fatalf("GetStatus error: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.RemainingDays != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", got.RemainingDays, tt.wantRemaining)
			}
			if !got.LastHeartbeat.Equal(last) {
				t.Errorf("lastHeartbeat = %v, want %v", got.LastHeartbeat, last)
			}
		})
	}
}

func TestGetStatus_DerivedDeadlines(t *testing.T) {
	last := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := &models.HeartbeatConfig{UserID: "u1", Frequency: models.FrequencyDaily, GracePeriodDays: 14}

	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewHeartbeatService(db, heartbeatRM(last, cfg, false))
	got, err := s.GetStatus(context.Background(), "u1", last.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if want := last.Add(1 * day); !got.NextDue.Equal(want) {
		t.Errorf("nextDue = %v, want %v", got.NextDue, want)
	}
	if want := last.Add(15 * day); !got.FinalDeadline.Equal(want) {
		t.Errorf("finalDeadline = %v, want %v", got.FinalDeadline, want)
	}
	if got.Frequency != models.FrequencyDaily || got.GracePeriodDays != 14 {
		t.Errorf("config echo = %q/%d, want daily/14", got.Frequency, got.GracePeriodDays)
	}
}

func TestGetConfig_DefaultsWhenAbsent(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{h: &fakeHeartbeatsRepo{getErr: common.ErrorNotFound}}
	s := NewHeartbeatService(db, rm)

	cfg, err := s.GetConfig(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetConfig error: %v", err)
	}
	if cfg.Frequency != models.DefaultFrequency || cfg.GracePeriodDays != models.DefaultGracePeriodDays {
		t.Errorf("defaults = %q/%d, want %q/%d",
			cfg.Frequency, cfg.GracePeriodDays, models.DefaultFrequency, models.DefaultGracePeriodDays)
	}
}

func TestUpdateConfig_PartialUpdate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	existing := &models.HeartbeatConfig{UserID: "u1", Frequency: models.FrequencyWeekly, GracePeriodDays: 7}
	rm := &fakeRepoManager{h: &fakeHeartbeatsRepo{getOut: existing}}
	s := NewHeartbeatService(db, rm)

	freq := models.FrequencyMonthly
	cfg, err := s.UpdateConfig(context.Background(), "u1", &freq, nil)
	if err != nil {
		t.Fatalf("UpdateConfig error: %v", err)
	}
	if cfg.Frequency != models.FrequencyMonthly {
		t.Errorf("frequency = %q, want monthly", cfg.Frequency)
	}
	if cfg.GracePeriodDays != 7 {
		t.Errorf("grace period changed unexpectedly: %d", cfg.GracePeriodDays)
	}
	if rm.h.upserted == nil {
		t.Fatal("config was not persisted")
	}
}

func TestUpdateConfig_RejectsInvalidValues(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{h: &fakeHeartbeatsRepo{getOut: models.DefaultHeartbeatConfig("u1")}}
	s := NewHeartbeatService(db, rm)

	badFreq := models.Frequency("hourly")
	if _, err := s.UpdateConfig(context.Background(), "u1", &badFreq, nil); !errors.Is(err, common.ErrInvalidFrequency) {
		t.Errorf("bad frequency: err = %v, want ErrInvalidFrequency", err)
	}

	badGrace := 5
	if _, err := s.UpdateConfig(context.Background(), "u1", nil, &badGrace); !errors.Is(err, common.ErrInvalidGracePeriod) {
		t.Errorf("bad grace period: err = %v, want ErrInvalidGracePeriod", err)
	}

	if rm.h.upserted != nil {
		t.Error("invalid update must not persist anything")
	}
}
