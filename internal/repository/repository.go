package repository

import (
	"context"
	"errors"
	"time"

	"carhire-backend/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	Delete(ctx context.Context, id int32) error

	// FindConflicting returns the interval of one blocking booking that
	// overlaps [from, to) on the vehicle, or nil when none exists.
	// excludeID > 0 skips that booking (used on updates).
	FindConflicting(ctx context.Context, vehicleID int32, from, to time.Time, excludeID int32) (*domain.Interval, error)

	// UpdateStatusCAS sets the status only if the current status still equals
	// prev. Returns false when the row was missing or already moved on.
	UpdateStatusCAS(ctx context.Context, id int32, prev, next domain.BookingStatus) (bool, error)

	// MarkPendingApproval atomically intercepts a staff-attempted PAID
	// transition: status becomes PENDING_APPROVAL and approval_required is
	// set, guarded by the previous status.
	MarkPendingApproval(ctx context.Context, id int32, prev domain.BookingStatus, createdBy int32) (bool, error)

	// Approve and Reject resolve the approval workflow. Both are guarded by
	// approval_required = true and return false when the booking no longer
	// requires approval (or does not exist).
	Approve(ctx context.Context, id, approverID int32, notes string) (bool, error)
	Reject(ctx context.Context, id, rejecterID int32, notes string) (bool, error)

	// SetCancelRequested flags a cancellation request, guarded against a
	// request already being pending.
	SetCancelRequested(ctx context.Context, id int32) (bool, error)

	ListPendingApprovals(ctx context.Context) ([]domain.Booking, error)
	ListByDriver(ctx context.Context, driverID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListBySupplier(ctx context.Context, supplierID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)

	// ListExpired returns VOID bookings whose expire_at has passed.
	ListExpired(ctx context.Context, now time.Time) ([]domain.Booking, error)
	// DeleteExpired removes a provisional booking, re-checking status and
	// expiry inside the DELETE itself so a booking that just left VOID
	// survives a concurrent sweep.
	DeleteExpired(ctx context.Context, id int32, now time.Time) (bool, error)
}

// CounterRepository backs the per-year sequential booking number. Next is an
// atomic increment-and-read on a dedicated counter row, so the sequence
// survives restarts and multiple instances.
type CounterRepository interface {
	Next(ctx context.Context, key string) (int64, error)
}

type AdditionalDriverRepository interface {
	Create(ctx context.Context, d *domain.AdditionalDriver) error
	GetByID(ctx context.Context, id int32) (*domain.AdditionalDriver, error)
	Delete(ctx context.Context, id int32) error
}

// ErrContractExists signals that a contract record is already present for
// the booking. The contracts table carries a unique constraint on booking_id
// as the backstop behind the orchestrator's existence lookup.
var ErrContractExists = errors.New("contract already exists for booking")

type ContractRepository interface {
	// Create returns ErrContractExists when the booking already has one.
	Create(ctx context.Context, c *domain.Contract) error
	GetByBookingID(ctx context.Context, bookingID int32) (*domain.Contract, error)
	DeleteByBookingID(ctx context.Context, bookingID int32) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
	Delete(ctx context.Context, id, userID int32) error

	// IncrementUnread and DecrementUnread mutate the per-user counter via a
	// single atomic statement.
	IncrementUnread(ctx context.Context, userID int32) error
	DecrementUnread(ctx context.Context, userID int32, by int32) error
	GetUnreadCount(ctx context.Context, userID int32) (int32, error)
	ResetUnread(ctx context.Context, userID int32) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ListAdmins(ctx context.Context) ([]domain.User, error)

	// DeleteUnverifiedBySession removes the provisional driver account that
	// a checkout session created, but only while it is still unverified and
	// has no remaining bookings.
	DeleteUnverifiedBySession(ctx context.Context, sessionID string) (bool, error)
}
