package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/service"

	"github.com/gorilla/mux"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	bookings service.BookingService
	conflict *service.ConflictChecker
}

func NewBookingHandler(bookings service.BookingService, conflict *service.ConflictChecker) *BookingHandler {
	return &BookingHandler{bookings: bookings, conflict: conflict}
}

type createBookingRequest struct {
	Booking          domain.Booking           `json:"booking"`
	AdditionalDriver *domain.AdditionalDriver `json:"additional_driver,omitempty"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	created, err := h.bookings.Create(r.Context(), actor, &req.Booking, req.AdditionalDriver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}

	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}

	var b domain.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	b.ID = id

	updated, err := h.bookings.Update(r.Context(), actor, &b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type bulkStatusRequest struct {
	IDs    []int32              `json:"ids"`
	Status domain.BookingStatus `json:"status"`
}

// UpdateStatus moves a batch of bookings to one target status. Bookings for
// which the move is illegal are skipped, not failed.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req bulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ids is required", Field: "ids"})
		return
	}

	if err := h.bookings.UpdateStatus(r.Context(), actor, req.IDs, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": req.IDs})
}

type bulkDeleteRequest struct {
	IDs []int32 `json:"ids"`
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ids is required", Field: "ids"})
		return
	}

	if err := h.bookings.Delete(r.Context(), req.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}

	if err := h.bookings.Cancel(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type approvalRequest struct {
	Notes string `json:"notes"`
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolveApproval(w, r, true)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolveApproval(w, r, false)
}

func (h *BookingHandler) resolveApproval(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	if actor.Capability != domain.CapabilityFull {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "approval requires full capability"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}

	var req approvalRequest
	if r.Body != nil {
		// Notes are optional; ignore an empty body.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var b *domain.Booking
	if approve {
		b, err = h.bookings.Approve(r.Context(), actor.UserID, id, req.Notes)
	} else {
		b, err = h.bookings.Reject(r.Context(), actor.UserID, id, req.Notes)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	if actor.Capability != domain.CapabilityFull {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "approval queue requires full capability"})
		return
	}

	pending, err := h.bookings.ListPendingApprovals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": pending})
}

type bookingListResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
}

func (h *BookingHandler) ListByDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid driver id"})
		return
	}
	status, page, pageSize := listParams(r)

	bookings, total, err := h.bookings.ListByDriver(r.Context(), id, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListResponse{Bookings: bookings, Total: total})
}

func (h *BookingHandler) ListBySupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid supplier id"})
		return
	}
	status, page, pageSize := listParams(r)

	bookings, total, err := h.bookings.ListBySupplier(r.Context(), id, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListResponse{Bookings: bookings, Total: total})
}

type availabilityResponse struct {
	Available bool             `json:"available"`
	Conflict  *domain.Interval `json:"conflict,omitempty"`
}

// CheckAvailability is the optimistic pre-flight check. A positive answer is
// advisory only; creation can still fail with 409 if another booking lands
// first.
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vehicle id"})
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from must be RFC3339", Field: "from"})
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to must be RFC3339", Field: "to"})
		return
	}
	if !from.Before(to) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from must be before to", Field: "from"})
		return
	}

	var exclude int32
	if v := r.URL.Query().Get("exclude_booking_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid exclude_booking_id"})
			return
		}
		exclude = int32(n)
	}

	conflict, err := h.conflict.CheckConflict(r.Context(), id, from, to, exclude)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Available: conflict == nil, Conflict: conflict})
}

func pathID(r *http.Request, name string) (int32, error) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

func listParams(r *http.Request) (status string, page, pageSize int32) {
	q := r.URL.Query()
	status = q.Get("status")
	page = 1
	pageSize = 20
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return status, page, pageSize
}
