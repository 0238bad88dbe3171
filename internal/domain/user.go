package domain

import "time"

type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleStaff  UserRole = "STAFF"
	UserRoleDriver UserRole = "DRIVER"
)

// ActorCapability is resolved once per request from the caller's role and
// passed explicitly into the booking engine instead of being re-derived in
// every handler.
type ActorCapability string

const (
	// CapabilityFull actors (admins, self-service drivers) may land a
	// booking on any status directly.
	CapabilityFull ActorCapability = "FULL"
	// CapabilityConstrained actors (agency staff) have their PAID
	// transitions intercepted into PENDING_APPROVAL.
	CapabilityConstrained ActorCapability = "CONSTRAINED"
)

func (r UserRole) Capability() ActorCapability {
	if r == UserRoleStaff {
		return CapabilityConstrained
	}
	return CapabilityFull
}

// Actor identifies the authenticated caller of an engine operation.
type Actor struct {
	UserID     int32
	Capability ActorCapability
}

type User struct {
	ID           int32    `json:"id"`
	Email        string   `json:"email"`
	PhoneNumber  string   `json:"phone_number"`
	PasswordHash string   `json:"-"`
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`

	// Verified is false for driver accounts provisionally created during a
	// payment checkout; the reaper removes them together with their expired
	// VOID booking.
	Verified bool `json:"verified"`

	// SessionID links a provisionally created account to the checkout
	// session that created it.
	SessionID string `json:"session_id,omitempty"`

	EnableEmailNotifications bool   `json:"enable_email_notifications"`
	PushToken                string `json:"push_token,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
