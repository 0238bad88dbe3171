package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/logger"
)

type errorResponse struct {
	Error    string           `json:"error"`
	Field    string           `json:"field,omitempty"`
	Conflict *domain.Interval `json:"conflict,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps engine errors onto HTTP statuses: conflicts carry the
// overlapping interval in the body so clients can show the caller when the
// vehicle frees up.
func writeError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	var illegal *domain.IllegalTransitionError
	var invalid *domain.ValidationError

	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:    conflict.Error(),
			Conflict: &conflict.Conflict,
		})
	case errors.As(err, &illegal):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: illegal.Error()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.Error(), Field: invalid.Field})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		logger.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
