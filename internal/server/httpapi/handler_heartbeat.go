package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/postscript/internal/server/models"
)

type checkInResponse struct {
	LastHeartbeat string `json:"lastHeartbeat"`
}

type heartbeatStatusDTO struct {
	Status          string `json:"status"`
	LastHeartbeat   string `json:"lastHeartbeat"`
	RemainingDays   int    `json:"remainingDays"`
	NextDue         string `json:"nextDue"`
	FinalDeadline   string `json:"finalDeadline"`
	Frequency       string `json:"frequency"`
	GracePeriodDays int    `json:"gracePeriodDays"`
}

type heartbeatConfigDTO struct {
	Frequency       string `json:"frequency"`
	GracePeriodDays int    `json:"gracePeriodDays"`
}

type heartbeatConfigRequest struct {
	Frequency       *string `json:"frequency,omitempty"`
	GracePeriodDays *int    `json:"gracePeriodDays,omitempty"`
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	ts, err := s.heartbeats.RecordCheckIn(r.Context(), userIDFromContext(r.Context()), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, checkInResponse{LastHeartbeat: ts.UTC().Format(time.RFC3339)})
}

func (s *Server) handleHeartbeatStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.heartbeats.GetStatus(r.Context(), userIDFromContext(r.Context()), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, heartbeatStatusDTO{
		Status:          string(status.Status),
		LastHeartbeat:   status.LastHeartbeat.UTC().Format(time.RFC3339),
		RemainingDays:   status.RemainingDays,
		NextDue:         status.NextDue.UTC().Format(time.RFC3339),
		FinalDeadline:   status.FinalDeadline.UTC().Format(time.RFC3339),
		Frequency:       string(status.Frequency),
		GracePeriodDays: status.GracePeriodDays,
	})
}

func (s *Server) handleGetHeartbeatConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.heartbeats.GetConfig(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, heartbeatConfigDTO{
		Frequency:       string(config.Frequency),
		GracePeriodDays: config.GracePeriodDays,
	})
}

func (s *Server) handleUpdateHeartbeatConfig(w http.ResponseWriter, r *http.Request) {
	var req heartbeatConfigRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var frequency *models.Frequency
	if req.Frequency != nil {
		f := models.Frequency(*req.Frequency)
		frequency = &f
	}

	config, err := s.heartbeats.UpdateConfig(r.Context(), userIDFromContext(r.Context()), frequency, req.GracePeriodDays)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, heartbeatConfigDTO{
		Frequency:       string(config.Frequency),
		GracePeriodDays: config.GracePeriodDays,
	})
}
