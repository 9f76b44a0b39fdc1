package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/postscript/internal/server/models"
	"github.com/dmitrijs2005/postscript/internal/server/services"
)

type assetRequest struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Data         string   `json:"data"`
	Hint         *string  `json:"hint,omitempty"`
	RecipientIDs []string `json:"recipientIds,omitempty"`
}

type assetUpdateRequest struct {
	Name         *string  `json:"name,omitempty"`
	Data         *string  `json:"data,omitempty"`
	Hint         *string  `json:"hint,omitempty"`
	RecipientIDs []string `json:"recipientIds,omitempty"`
}

type assetDTO struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Data       string         `json:"data,omitempty"`
	Hint       *string        `json:"hint,omitempty"`
	Recipients []recipientDTO `json:"recipients,omitempty"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
}

func assetToDTO(a *models.Asset) assetDTO {
	return assetDTO{
		ID:        a.ID,
		Type:      string(a.Type),
		Name:      a.Name,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	asset, err := s.assets.Create(r.Context(), userIDFromContext(r.Context()), callerShare(r), &services.CreateAssetInput{
		Type:         models.AssetType(req.Type),
		Name:         req.Name,
		Data:         req.Data,
		Hint:         req.Hint,
		RecipientIDs: req.RecipientIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, assetToDTO(asset))
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	items, err := s.assets.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]assetDTO, 0, len(items))
	for _, item := range items {
		dto := assetToDTO(item.Asset)
		for _, rec := range item.Recipients {
			dto.Recipients = append(dto.Recipients, recipientToDTO(rec))
		}
		out = append(out, dto)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	detail, err := s.assets.Get(r.Context(), userIDFromContext(r.Context()), callerShare(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	dto := assetToDTO(detail.Asset)
	dto.Data = detail.Data
	dto.Hint = detail.Hint
	writeData(w, http.StatusOK, dto)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetUpdateRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	asset, err := s.assets.Update(r.Context(), userIDFromContext(r.Context()), callerShare(r), r.PathValue("id"), &services.UpdateAssetInput{
		Name:         req.Name,
		Data:         req.Data,
		Hint:         req.Hint,
		RecipientIDs: req.RecipientIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, assetToDTO(asset))
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.assets.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
