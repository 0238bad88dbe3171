package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/logger"
	"carhire-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type checkoutService struct {
	bookingSvc    BookingService
	bookingRepo   repository.BookingRepository
	userRepo      repository.UserRepository
	gateway       PaymentGateway
	sink          TransitionSink
	expiryMinutes int
}

func NewCheckoutService(
	bookingSvc BookingService,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	gateway PaymentGateway,
	sink TransitionSink,
	expiryMinutes int,
) CheckoutService {
	return &checkoutService{
		bookingSvc:    bookingSvc,
		bookingRepo:   bookingRepo,
		userRepo:      userRepo,
		gateway:       gateway,
		sink:          sink,
		expiryMinutes: expiryMinutes,
	}
}

// Complete creates or finalizes a booking coming out of the external payment
// flow. A succeeded intent lands the booking on PAID; a still-pending intent
// leaves it provisional (VOID with an expiry) for the reaper to collect if
// payment never arrives.
func (s *checkoutService) Complete(ctx context.Context, payload CheckoutPayload) (int32, error) {
	if payload.PaymentIntentID == "" {
		return 0, &domain.ValidationError{Field: "payment_intent_id", Reason: "required"}
	}

	status, err := s.gateway.GetPaymentStatus(ctx, payload.PaymentIntentID)
	if err != nil {
		return 0, err
	}
	if status == PaymentStatusFailed {
		return 0, &domain.ValidationError{Field: "payment_intent_id", Reason: "payment failed"}
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Finalize an already-created provisional booking.
	if payload.Booking.ID != 0 {
		return s.finalize(ctx, payload.Booking.ID, status)
	}

	b := payload.Booking
	b.SessionID = sessionID
	b.PaymentIntentID = payload.PaymentIntentID

	if status == PaymentStatusSucceeded {
		b.Status = domain.BookingStatusPaid
		b.ExpireAt = nil
	} else {
		expireAt := time.Now().Add(time.Duration(s.expiryMinutes) * time.Minute)
		b.Status = domain.BookingStatusVoid
		b.ExpireAt = &expireAt
	}

	// A first-time customer gets a provisional, unverified account tied to
	// this checkout session; the reaper removes it if the booking expires.
	if payload.Driver != nil && b.DriverID == 0 {
		driver := payload.Driver
		driver.Role = domain.UserRoleDriver
		driver.Verified = false
		driver.SessionID = sessionID
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if err != nil {
			return 0, fmt.Errorf("failed to hash provisional password: %w", err)
		}
		driver.PasswordHash = string(hash)
		if err := s.userRepo.Create(ctx, driver); err != nil {
			return 0, fmt.Errorf("failed to create driver account: %w", err)
		}
		b.DriverID = driver.ID
	}

	// Checkout runs with the customer's own (full) capability.
	actor := domain.Actor{UserID: b.DriverID, Capability: domain.CapabilityFull}
	created, err := s.bookingSvc.Create(ctx, actor, &b, payload.AdditionalDriver)
	if err != nil {
		return 0, err
	}

	logger.Info("Checkout completed", "booking_id", created.ID, "session_id", sessionID, "payment_status", status)
	return created.ID, nil
}

func (s *checkoutService) finalize(ctx context.Context, bookingID int32, status PaymentStatus) (int32, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if status != PaymentStatusSucceeded {
		// Payment still pending; the provisional booking keeps its expiry.
		return b.ID, nil
	}
	if b.Status == domain.BookingStatusPaid {
		return b.ID, nil
	}

	ok, err := s.bookingRepo.UpdateStatusCAS(ctx, b.ID, b.Status, domain.BookingStatusPaid)
	if err != nil {
		if errors.Is(err, domain.ErrIntervalOverlap) {
			return 0, &domain.ConflictError{VehicleID: b.VehicleID, Conflict: b.Interval()}
		}
		return 0, err
	}
	if !ok {
		return 0, &domain.IllegalTransitionError{BookingID: b.ID, From: b.Status,
			To: domain.BookingStatusPaid, Reason: "booking changed concurrently, retry"}
	}

	updated := *b
	updated.Status = domain.BookingStatusPaid
	updated.ExpireAt = nil
	s.sink.Enqueue(Transition{
		Kind:    TransitionStatusChanged,
		Booking: updated,
		From:    b.Status,
		To:      domain.BookingStatusPaid,
	})
	return b.ID, nil
}
