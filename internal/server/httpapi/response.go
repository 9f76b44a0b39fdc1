package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/postscript/internal/common"
)

// apiResponse is the uniform JSON envelope for every endpoint.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

// writeError maps service errors onto HTTP statuses. Messages come from the
// sentinel errors themselves, so nothing secret ever leaks into a response.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, apiResponse{Error: "not found"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, apiResponse{Error: "unauthorized"})
	case errors.Is(err, common.ErrInvalidShare):
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: common.ErrInvalidShare.Error()})
	case errors.Is(err, common.ErrDecryptionFailed):
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: common.ErrDecryptionFailed.Error()})
	case errors.Is(err, common.ErrUnsupportedVersion):
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: common.ErrUnsupportedVersion.Error()})
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrInvalidFrequency),
		errors.Is(err, common.ErrInvalidGracePeriod):
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: "internal error"})
	}
}

func readBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrInvalidInput
	}
	return nil
}
