// Package httpapi exposes the application services over a JSON HTTP API.
// All /api routes except session creation and health require a bearer
// session token; asset payload routes additionally require the caller's
// secret share header.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/postscript/internal/logging"
	"github.com/dmitrijs2005/postscript/internal/server/services"
)

type Server struct {
	address    string
	logger     logging.Logger
	jwtSecret  []byte
	users      *services.UserService
	assets     *services.AssetService
	recipients *services.RecipientService
	heartbeats *services.HeartbeatService
}

func NewServer(address string, l logging.Logger, secretKey string,
	us *services.UserService, as *services.AssetService,
	rs *services.RecipientService, hs *services.HeartbeatService) *Server {
	return &Server{
		address:    address,
		logger:     l.With("module", "http_server"),
		jwtSecret:  []byte(secretKey),
		users:      us,
		assets:     as,
		recipients: rs,
		heartbeats: hs,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/session", s.handleCreateSession)
	mux.HandleFunc("GET /api/auth/me", s.withAuth(s.handleMe))

	mux.HandleFunc("POST /api/assets", s.withAuth(s.handleCreateAsset))
	mux.HandleFunc("GET /api/assets", s.withAuth(s.handleListAssets))
	mux.HandleFunc("GET /api/assets/{id}", s.withAuth(s.handleGetAsset))
	mux.HandleFunc("PUT /api/assets/{id}", s.withAuth(s.handleUpdateAsset))
	mux.HandleFunc("DELETE /api/assets/{id}", s.withAuth(s.handleDeleteAsset))

	mux.HandleFunc("POST /api/recipients", s.withAuth(s.handleCreateRecipient))
	mux.HandleFunc("GET /api/recipients", s.withAuth(s.handleListRecipients))
	mux.HandleFunc("GET /api/recipients/{id}", s.withAuth(s.handleGetRecipient))
	mux.HandleFunc("PUT /api/recipients/{id}", s.withAuth(s.handleUpdateRecipient))
	mux.HandleFunc("DELETE /api/recipients/{id}", s.withAuth(s.handleDeleteRecipient))

	mux.HandleFunc("POST /api/heartbeat", s.withAuth(s.handleCheckIn))
	mux.HandleFunc("GET /api/heartbeat/status", s.withAuth(s.handleHeartbeatStatus))
	mux.HandleFunc("GET /api/heartbeat/config", s.withAuth(s.handleGetHeartbeatConfig))
	mux.HandleFunc("PUT /api/heartbeat/config", s.withAuth(s.handleUpdateHeartbeatConfig))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
