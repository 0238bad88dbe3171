// Error types shared across the booking engine. Sentinel values and typed
// errors let the HTTP layer distinguish failure classes: a ConflictError maps
// to 409 with the conflicting interval, ErrNotFound to an empty response,
// an IllegalTransitionError to 422, and a ValidationError to 400.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a booking or approval target does not exist.
var ErrNotFound = errors.New("not found")

// ErrIntervalOverlap is the storage layer's signal that an insert or update
// violated the no-double-booking constraint. The service layer converts it
// into a ConflictError carrying the conflicting interval.
var ErrIntervalOverlap = errors.New("booking interval overlaps an existing booking")

// ConflictError reports that a candidate interval overlaps an existing
// blocking booking on the same vehicle.
type ConflictError struct {
	VehicleID int32
	Conflict  Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %d is already booked from %s to %s",
		e.VehicleID, e.Conflict.From.Format("2006-01-02 15:04"), e.Conflict.To.Format("2006-01-02 15:04"))
}

// IllegalTransitionError reports a status change the transition table
// forbids, such as approving a booking that does not require approval. The
// booking state is left untouched.
type IllegalTransitionError struct {
	BookingID int32
	From      BookingStatus
	To        BookingStatus
	Reason    string
}

func (e *IllegalTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("booking %d: illegal transition: %s", e.BookingID, e.Reason)
	}
	return fmt.Sprintf("booking %d: illegal transition from %s to %s", e.BookingID, e.From, e.To)
}

// ValidationError rejects malformed input before any persistence occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
