package domain

import "time"

type BookingStatus string

const (
	BookingStatusVoid            BookingStatus = "VOID"
	BookingStatusPending         BookingStatus = "PENDING"
	BookingStatusDeposit         BookingStatus = "DEPOSIT"
	BookingStatusPaid            BookingStatus = "PAID"
	BookingStatusReserved        BookingStatus = "RESERVED"
	BookingStatusCancelled       BookingStatus = "CANCELLED"
	BookingStatusPendingApproval BookingStatus = "PENDING_APPROVAL"
)

// BlockingStatuses are the statuses that count against vehicle availability.
var BlockingStatuses = []BookingStatus{
	BookingStatusPaid,
	BookingStatusReserved,
	BookingStatusDeposit,
	BookingStatusPendingApproval,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusVoid, BookingStatusPending, BookingStatusDeposit,
		BookingStatusPaid, BookingStatusReserved, BookingStatusCancelled,
		BookingStatusPendingApproval:
		return true
	}
	return false
}

// Blocking reports whether a booking in this status holds the vehicle.
func (s BookingStatus) Blocking() bool {
	switch s {
	case BookingStatusPaid, BookingStatusReserved, BookingStatusDeposit, BookingStatusPendingApproval:
		return true
	}
	return false
}

// CanTransitionTo reports whether the engine allows moving from s to target.
// PENDING_APPROVAL only resolves to PAID (approve) or CANCELLED (reject),
// and CANCELLED is terminal.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if !target.Valid() {
		return false
	}
	switch s {
	case BookingStatusPendingApproval:
		return target == BookingStatusPaid || target == BookingStatusCancelled
	case BookingStatusCancelled:
		return false
	}
	return true
}

// Interval is a half-open time range [From, To).
type Interval struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Overlaps reports whether two half-open intervals intersect:
// [a,b) and [c,d) overlap iff a < d && c < b.
func (i Interval) Overlaps(other Interval) bool {
	return i.From.Before(other.To) && other.From.Before(i.To)
}

type Booking struct {
	ID                 int32         `json:"id"`
	Number             string        `json:"number"`
	VehicleID          int32         `json:"vehicle_id"`
	SupplierID         int32         `json:"supplier_id"`
	DriverID           int32         `json:"driver_id"`
	AdditionalDriverID *int32        `json:"additional_driver_id,omitempty"`
	CreatedBy          *int32        `json:"created_by,omitempty"`
	From               time.Time     `json:"from"`
	To                 time.Time     `json:"to"`
	Status             BookingStatus `json:"status"`

	// Option flags affect price only, never the lifecycle.
	Cancellation          bool `json:"cancellation"`
	Amendments            bool `json:"amendments"`
	TheftProtection       bool `json:"theft_protection"`
	CollisionDamageWaiver bool `json:"collision_damage_waiver"`
	FullInsurance         bool `json:"full_insurance"`
	AdditionalDriver      bool `json:"additional_driver"`

	// PriceCents is computed by the external pricing collaborator and
	// persisted as opaque data.
	PriceCents int32 `json:"price_cents"`

	CancelRequested bool `json:"cancel_requested"`

	ApprovalRequired bool       `json:"approval_required"`
	ApprovedBy       *int32     `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectedBy       *int32     `json:"rejected_by,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	ApprovalNotes    string     `json:"approval_notes,omitempty"`

	// ExpireAt is only present on VOID bookings created mid-checkout and is
	// cleared the instant the booking reaches any other status.
	ExpireAt *time.Time `json:"expire_at,omitempty"`

	// Opaque correlation handles to the external payment collaborator.
	SessionID       string `json:"session_id,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Interval returns the booking's half-open rental interval.
func (b *Booking) Interval() Interval {
	return Interval{From: b.From, To: b.To}
}
