package service

import (
	"context"
	"time"

	"carhire-backend/internal/domain"
)

type BookingService interface {
	Create(ctx context.Context, actor domain.Actor, b *domain.Booking, extra *domain.AdditionalDriver) (*domain.Booking, error)
	Update(ctx context.Context, actor domain.Actor, b *domain.Booking) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, ids []int32, status domain.BookingStatus) error
	Delete(ctx context.Context, ids []int32) error
	Cancel(ctx context.Context, actor domain.Actor, id int32) error
	Approve(ctx context.Context, approverID, id int32, notes string) (*domain.Booking, error)
	Reject(ctx context.Context, rejecterID, id int32, notes string) (*domain.Booking, error)
	ListPendingApprovals(ctx context.Context) ([]domain.Booking, error)
	Get(ctx context.Context, id int32) (*domain.Booking, error)
	ListByDriver(ctx context.Context, driverID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListBySupplier(ctx context.Context, supplierID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

// CheckoutPayload finalizes a booking coming out of an external payment flow.
type CheckoutPayload struct {
	SessionID        string                   `json:"session_id"`
	PaymentIntentID  string                   `json:"payment_intent_id"`
	Booking          domain.Booking           `json:"booking"`
	Driver           *domain.User             `json:"driver,omitempty"`
	AdditionalDriver *domain.AdditionalDriver `json:"additional_driver,omitempty"`
}

type CheckoutService interface {
	Complete(ctx context.Context, payload CheckoutPayload) (int32, error)
}

type NotificationService interface {
	Notify(ctx context.Context, userID int32, message string, bookingID *int32) error
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	UnreadCount(ctx context.Context, userID int32) (int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
	Delete(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendBookingStatusNotification(ctx context.Context, email, name, bookingNumber string, status domain.BookingStatus) error
	SendBookingCreatedNotification(ctx context.Context, email, name, bookingNumber string, from, to time.Time) error
	SendApprovalRequestNotification(ctx context.Context, adminEmail, staffName, bookingNumber string) error
	SendApprovalOutcomeNotification(ctx context.Context, email, bookingNumber string, approved bool, notes string) error
	SendCancelRequestNotification(ctx context.Context, adminEmail, driverName, bookingNumber string) error
}

// PushService dispatches a mobile push message to a device token.
type PushService interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// DocumentService is the document-generation collaborator. Implementations
// must be cheap to call repeatedly; the orchestrator guarantees at-most-once
// contract records per booking.
type DocumentService interface {
	GenerateContract(ctx context.Context, b *domain.Booking) (*domain.Contract, error)
}

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentGateway is the read-only view onto the external payment collaborator.
type PaymentGateway interface {
	GetPaymentStatus(ctx context.Context, paymentIntentID string) (PaymentStatus, error)
}
