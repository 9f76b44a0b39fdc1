package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/dbx"
	"github.com/dmitrijs2005/postscript/internal/server/auth"
	sc "github.com/dmitrijs2005/postscript/internal/server/config"
	"github.com/dmitrijs2005/postscript/internal/server/models"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/repomanager"
)

// UserService handles account lookup/creation and session token issuance.
// Sign-in is upstream identity based (Apple): the first session for an email
// creates the account with default heartbeat settings.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, config *sc.Config) *UserService {
	return &UserService{db: db, repomanager: rm, config: config}
}

// Session is an issued token plus the account it belongs to.
type Session struct {
	Token   string
	User    *models.User
	Expires time.Time
}

// EnsureAccount returns a session for the given identity, creating the
// account on first sight. Creation seeds last_heartbeat and the default
// heartbeat config in one transaction, so a brand-new user is never swept.
func (s *UserService) EnsureAccount(ctx context.Context, email string, appleID *string) (*Session, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrInvalidInput)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		user, err = s.createAccount(ctx, email, appleID)
		if err != nil {
			return nil, err
		}
	}

	token, err := auth.GenerateToken(user.ID, user.Email, []byte(s.config.SecretKey), s.config.SessionValidityDuration)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:   token,
		User:    user,
		Expires: time.Now().Add(s.config.SessionValidityDuration),
	}, nil
}

func (s *UserService) createAccount(ctx context.Context, email string, appleID *string) (*models.User, error) {
	var created *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:   email,
			AppleID: appleID,
		})
		if err != nil {
			return err
		}
		created = u
		return s.repomanager.Heartbeats(tx).Upsert(ctx, models.DefaultHeartbeatConfig(u.ID))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns the account behind a verified session.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}
