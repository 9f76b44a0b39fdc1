// Package server initializes and runs the application server: it wires the
// database, repositories and services, starts the HTTP API, and drives the
// scheduled lifecycle sweep until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/postscript/internal/logging"
	"github.com/dmitrijs2005/postscript/internal/server/config"
	"github.com/dmitrijs2005/postscript/internal/server/httpapi"
	"github.com/dmitrijs2005/postscript/internal/server/notifications"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/postscript/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	httpServer *httpapi.Server
	sweep      *services.SweepService
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	crypto := services.NewCryptoService(cfg.ServerSecretShare)
	us := services.NewUserService(db, rm, cfg)
	as := services.NewAssetService(db, rm, crypto)
	rs := services.NewRecipientService(db, rm)
	hs := services.NewHeartbeatService(db, rm)

	notifier := notifications.NewLogNotifier(logger)
	release := services.NewReleaseService(db, rm, cfg)
	sweep := services.NewSweepService(db, rm, notifier, release, logger, cfg.SweepConcurrency)

	httpServer := httpapi.NewServer(cfg.EndpointAddr, logger, cfg.SecretKey, us, as, rs, hs)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		sweep:      sweep,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSweepLoop runs the scheduled evaluator on its interval. One run fires
// immediately on startup so a long-stopped server catches up without waiting
// a full interval.
func (app *App) startSweepLoop(ctx context.Context) {
	run := func() {
		n, err := app.sweep.RunScheduledSweep(ctx, time.Now())
		if err != nil {
			app.logger.Error(ctx, "sweep run failed", "error", err)
			return
		}
		app.logger.Debug(ctx, "sweep run finished", "transitions", n)
	}

	run()

	ticker := time.NewTicker(app.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			app.logger.Info(ctx, "Stopping sweep loop...")
			return
		case <-ticker.C:
			run()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSweepLoop(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
