package http

import (
	"encoding/json"
	"net/http"

	"carhire-backend/internal/service"
)

// CheckoutHandler accepts the callback from the payment flow. It is
// unauthenticated: a first-time customer has no account yet, and the payment
// intent id is the correlation proof.
type CheckoutHandler struct {
	checkout service.CheckoutService
}

func NewCheckoutHandler(checkout service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var payload service.CheckoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	bookingID, err := h.checkout.Complete(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking_id": bookingID})
}
