package http

import (
	"errors"
	"io"
	"net/http"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/logger"
	"carhire-backend/internal/repository"
	"carhire-backend/internal/storage"

	"github.com/gorilla/mux"
)

// ContractHandler serves generated rental agreements.
type ContractHandler struct {
	contracts repository.ContractRepository
	store     storage.DocumentStorage
}

func NewContractHandler(contracts repository.ContractRepository, store storage.DocumentStorage) *ContractHandler {
	return &ContractHandler{contracts: contracts, store: store}
}

type contractResponse struct {
	Contract    *domain.Contract `json:"contract"`
	DownloadURL string           `json:"download_url"`
}

// GetByBooking returns the contract record for a booking, if one has been
// generated yet.
func (h *ContractHandler) GetByBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}

	c, err := h.contracts.GetByBookingID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no contract generated for booking"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contractResponse{
		Contract:    c,
		DownloadURL: h.store.DownloadURL(c.FileKey),
	})
}

// Download streams the stored contract document.
func (h *ContractHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file key"})
		return
	}

	file, err := h.store.ReadFile(key)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "file not found"})
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.Copy(w, file); err != nil {
		logger.Error("Failed to stream contract file", "key", key, "error", err)
	}
}
