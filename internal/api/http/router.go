package http

import (
	"net/http"

	"carhire-backend/internal/security"

	"github.com/gorilla/mux"
)

// Handlers bundles the route handlers for the server.
type Handlers struct {
	Booking      *BookingHandler
	Checkout     *CheckoutHandler
	Notification *NotificationHandler
	Contract     *ContractHandler
}

// NewRouter wires up all HTTP routes. Checkout and contract downloads are
// public; everything else sits behind bearer auth.
func NewRouter(h Handlers, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	r.HandleFunc("/api/v1/checkout", h.Checkout.Complete).Methods("POST")
	r.HandleFunc("/api/v1/contracts/files/{key:.*}", h.Contract.Download).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/bookings", h.Booking.Create).Methods("POST")
	api.HandleFunc("/bookings/status", h.Booking.UpdateStatus).Methods("POST")
	api.HandleFunc("/bookings/delete", h.Booking.Delete).Methods("POST")
	api.HandleFunc("/bookings/pending-approvals", h.Booking.ListPendingApprovals).Methods("GET")
	api.HandleFunc("/bookings/{id:[0-9]+}", h.Booking.Get).Methods("GET")
	api.HandleFunc("/bookings/{id:[0-9]+}", h.Booking.Update).Methods("PUT")
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", h.Booking.Cancel).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/approve", h.Booking.Approve).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/reject", h.Booking.Reject).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/contract", h.Contract.GetByBooking).Methods("GET")

	api.HandleFunc("/drivers/{id:[0-9]+}/bookings", h.Booking.ListByDriver).Methods("GET")
	api.HandleFunc("/suppliers/{id:[0-9]+}/bookings", h.Booking.ListBySupplier).Methods("GET")
	api.HandleFunc("/vehicles/{id:[0-9]+}/availability", h.Booking.CheckAvailability).Methods("GET")

	api.HandleFunc("/notifications", h.Notification.List).Methods("GET")
	api.HandleFunc("/notifications/unread-count", h.Notification.UnreadCount).Methods("GET")
	api.HandleFunc("/notifications/read-all", h.Notification.MarkAllAsRead).Methods("POST")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.Notification.MarkAsRead).Methods("POST")
	api.HandleFunc("/notifications/{id:[0-9]+}", h.Notification.Delete).Methods("DELETE")

	return r
}
