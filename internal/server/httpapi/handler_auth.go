package httpapi

import (
	"net/http"
	"time"
)

type sessionRequest struct {
	Email   string  `json:"email"`
	AppleID *string `json:"appleId,omitempty"`
}

type userDTO struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	AppleID   *string `json:"appleId,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type sessionResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      userDTO `json:"user"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := s.users.EnsureAccount(r.Context(), req.Email, req.AppleID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.Expires.UTC().Format(time.RFC3339),
		User: userDTO{
			ID:        session.User.ID,
			Email:     session.User.Email,
			AppleID:   session.User.AppleID,
			CreatedAt: session.User.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, userDTO{
		ID:        user.ID,
		Email:     user.Email,
		AppleID:   user.AppleID,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	})
}
