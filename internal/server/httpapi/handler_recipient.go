package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/postscript/internal/server/models"
	"github.com/dmitrijs2005/postscript/internal/server/services"
)

type recipientRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Relationship *string `json:"relationship,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`
}

type recipientDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Relationship *string `json:"relationship,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`
	Verified     bool    `json:"verified"`
	CreatedAt    string  `json:"createdAt"`
}

func recipientToDTO(r *models.Recipient) recipientDTO {
	return recipientDTO{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Relationship: r.Relationship,
		AvatarURL:    r.AvatarURL,
		Verified:     r.Verified,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.recipients.Create(r.Context(), userIDFromContext(r.Context()), &services.RecipientInput{
		Name:         req.Name,
		Email:        req.Email,
		Relationship: req.Relationship,
		AvatarURL:    req.AvatarURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, recipientToDTO(created))
}

func (s *Server) handleGetRecipient(w http.ResponseWriter, r *http.Request) {
	rec, err := s.recipients.Get(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, recipientToDTO(rec))
}

func (s *Server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	list, err := s.recipients.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recipientDTO, 0, len(list))
	for _, rec := range list {
		out = append(out, recipientToDTO(rec))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.recipients.Update(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"), &services.RecipientInput{
		Name:         req.Name,
		Email:        req.Email,
		Relationship: req.Relationship,
		AvatarURL:    req.AvatarURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, recipientToDTO(updated))
}

func (s *Server) handleDeleteRecipient(w http.ResponseWriter, r *http.Request) {
	if err := s.recipients.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
