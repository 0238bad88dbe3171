package service

import (
	"context"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/repository"
)

// ConflictChecker is the optimistic pre-flight availability check. It answers
// whether a candidate interval overlaps a blocking booking so a request can
// be rejected fast with a reportable interval. It is NOT the consistency
// mechanism: two concurrent creations can both pass this check, and the
// storage layer's exclusion constraint is the last line of defense.
type ConflictChecker struct {
	bookingRepo repository.BookingRepository
}

func NewConflictChecker(bookingRepo repository.BookingRepository) *ConflictChecker {
	return &ConflictChecker{bookingRepo: bookingRepo}
}

// CheckConflict returns the interval of one conflicting blocking booking, or
// nil when the vehicle is free over [from, to). excludeBookingID > 0 skips
// that booking, which updates use to avoid colliding with themselves.
func (c *ConflictChecker) CheckConflict(ctx context.Context, vehicleID int32, from, to time.Time, excludeBookingID int32) (*domain.Interval, error) {
	return c.bookingRepo.FindConflicting(ctx, vehicleID, from, to, excludeBookingID)
}
