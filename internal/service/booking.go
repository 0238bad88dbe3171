package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/logger"
	"carhire-backend/internal/repository"
)

// TransitionSink receives committed booking transitions. The side-effect
// orchestrator implements it; the state machine never blocks on it.
type TransitionSink interface {
	Enqueue(t Transition)
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	counterRepo  repository.CounterRepository
	driverRepo   repository.AdditionalDriverRepository
	contractRepo repository.ContractRepository
	checker      *ConflictChecker
	sink         TransitionSink
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	counterRepo repository.CounterRepository,
	driverRepo repository.AdditionalDriverRepository,
	contractRepo repository.ContractRepository,
	checker *ConflictChecker,
	sink TransitionSink,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		counterRepo:  counterRepo,
		driverRepo:   driverRepo,
		contractRepo: contractRepo,
		checker:      checker,
		sink:         sink,
	}
}

func validateBooking(b *domain.Booking) error {
	if b.VehicleID == 0 {
		return &domain.ValidationError{Field: "vehicle_id", Reason: "required"}
	}
	if b.DriverID == 0 {
		return &domain.ValidationError{Field: "driver_id", Reason: "required"}
	}
	if b.SupplierID == 0 {
		return &domain.ValidationError{Field: "supplier_id", Reason: "required"}
	}
	if !b.From.Before(b.To) {
		return &domain.ValidationError{Field: "interval", Reason: "from must be before to"}
	}
	if !b.Status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", b.Status)}
	}
	return nil
}

// conflictError resolves the interval to report after the storage constraint
// fired, falling back to the candidate's own interval when the racing booking
// is no longer visible.
func (s *bookingService) conflictError(ctx context.Context, b *domain.Booking, excludeID int32) error {
	iv, err := s.checker.CheckConflict(ctx, b.VehicleID, b.From, b.To, excludeID)
	if err != nil || iv == nil {
		return &domain.ConflictError{VehicleID: b.VehicleID, Conflict: b.Interval()}
	}
	return &domain.ConflictError{VehicleID: b.VehicleID, Conflict: *iv}
}

func (s *bookingService) Create(ctx context.Context, actor domain.Actor, b *domain.Booking, extra *domain.AdditionalDriver) (*domain.Booking, error) {
	if err := validateBooking(b); err != nil {
		return nil, err
	}
	if b.AdditionalDriver && extra == nil {
		return nil, &domain.ValidationError{Field: "additional_driver", Reason: "additional driver record is required"}
	}

	// Optimistic pre-flight; the exclusion constraint re-checks on commit.
	if b.Status.Blocking() {
		iv, err := s.checker.CheckConflict(ctx, b.VehicleID, b.From, b.To, 0)
		if err != nil {
			return nil, err
		}
		if iv != nil {
			return nil, &domain.ConflictError{VehicleID: b.VehicleID, Conflict: *iv}
		}
	}

	// Approval interception: a constrained actor cannot land directly on the
	// financially binding status.
	intercepted := false
	if actor.Capability == domain.CapabilityConstrained {
		b.CreatedBy = &actor.UserID
		if b.Status == domain.BookingStatusPaid {
			b.Status = domain.BookingStatusPendingApproval
			b.ApprovalRequired = true
			intercepted = true
		}
	}

	if b.Status != domain.BookingStatusVoid {
		b.ExpireAt = nil
	}

	year := time.Now().UTC().Year()
	seq, err := s.counterRepo.Next(ctx, fmt.Sprintf("booking-%d", year))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate booking number: %w", err)
	}
	b.Number = fmt.Sprintf("%d-%06d", year, seq)

	if extra != nil {
		if err := s.driverRepo.Create(ctx, extra); err != nil {
			return nil, fmt.Errorf("failed to create additional driver: %w", err)
		}
		b.AdditionalDriverID = &extra.ID
	}

	if err := s.bookingRepo.Create(ctx, b); err != nil {
		if extra != nil {
			// No partial booking is left behind on a failed create.
			_ = s.driverRepo.Delete(ctx, extra.ID)
		}
		if errors.Is(err, domain.ErrIntervalOverlap) {
			return nil, s.conflictError(ctx, b, 0)
		}
		return nil, err
	}

	logger.Info("Booking created", "booking_id", b.ID, "number", b.Number,
		"vehicle_id", b.VehicleID, "status", b.Status, "intercepted", intercepted)

	s.sink.Enqueue(Transition{
		Kind:             TransitionCreated,
		Booking:          *b,
		To:               b.Status,
		ConstrainedActor: actor.Capability == domain.CapabilityConstrained,
	})
	return b, nil
}

func (s *bookingService) Update(ctx context.Context, actor domain.Actor, b *domain.Booking) (*domain.Booking, error) {
	existing, err := s.bookingRepo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if err := validateBooking(b); err != nil {
		return nil, err
	}

	target := b.Status
	if target != existing.Status {
		if !existing.Status.CanTransitionTo(target) {
			return nil, &domain.IllegalTransitionError{BookingID: b.ID, From: existing.Status, To: target}
		}
		// Re-trigger the approval check on edits that land on PAID. The
		// caller cannot bypass interception by direct status overwrite. A
		// booking whose approval was already resolved is exempt: the guard
		// on the approval queue filters resolved bookings out, so
		// re-intercepting would strand it in PENDING_APPROVAL.
		if actor.Capability == domain.CapabilityConstrained && target == domain.BookingStatusPaid &&
			existing.ApprovedBy == nil && existing.RejectedBy == nil {
			b.Status = domain.BookingStatusPendingApproval
			b.ApprovalRequired = true
			b.CreatedBy = &actor.UserID
		}
	}

	if b.Status.Blocking() {
		iv, err := s.checker.CheckConflict(ctx, b.VehicleID, b.From, b.To, b.ID)
		if err != nil {
			return nil, err
		}
		if iv != nil {
			return nil, &domain.ConflictError{VehicleID: b.VehicleID, Conflict: *iv}
		}
	}

	// Approval audit fields never change through plain edits.
	b.ApprovedBy, b.ApprovedAt = existing.ApprovedBy, existing.ApprovedAt
	b.RejectedBy, b.RejectedAt = existing.RejectedBy, existing.RejectedAt
	if existing.ApprovedBy != nil || existing.RejectedBy != nil {
		b.ApprovalRequired = false
	}

	if b.Status != domain.BookingStatusVoid {
		b.ExpireAt = nil
	}

	// The additional-driver record is exclusively owned: dropping the option
	// deletes the sub-record.
	if existing.AdditionalDriverID != nil && !b.AdditionalDriver {
		if err := s.driverRepo.Delete(ctx, *existing.AdditionalDriverID); err != nil {
			logger.Warn("Failed to delete orphaned additional driver", "id", *existing.AdditionalDriverID, "error", err)
		}
		b.AdditionalDriverID = nil
	}

	if err := s.bookingRepo.Update(ctx, b); err != nil {
		if errors.Is(err, domain.ErrIntervalOverlap) {
			return nil, s.conflictError(ctx, b, b.ID)
		}
		return nil, err
	}

	if b.Status != existing.Status {
		s.sink.Enqueue(Transition{
			Kind:             TransitionStatusChanged,
			Booking:          *b,
			From:             existing.Status,
			To:               b.Status,
			ConstrainedActor: actor.Capability == domain.CapabilityConstrained,
		})
	}
	return b, nil
}

// UpdateStatus applies the same target status to a set of bookings. A booking
// already in the target status is a no-op and emits nothing. The approval
// interception applies here exactly as on the single-update path.
func (s *bookingService) UpdateStatus(ctx context.Context, actor domain.Actor, ids []int32, status domain.BookingStatus) error {
	if !status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	for _, id := range ids {
		existing, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Bulk status update skipped missing booking", "booking_id", id)
				continue
			}
			return err
		}
		if existing.Status == status {
			continue
		}
		if !existing.Status.CanTransitionTo(status) {
			logger.Warn("Bulk status update skipped illegal transition",
				"booking_id", id, "from", existing.Status, "to", status)
			continue
		}

		target := status
		var ok bool
		if actor.Capability == domain.CapabilityConstrained && status == domain.BookingStatusPaid &&
			existing.ApprovedBy == nil && existing.RejectedBy == nil {
			target = domain.BookingStatusPendingApproval
			ok, err = s.bookingRepo.MarkPendingApproval(ctx, id, existing.Status, actor.UserID)
		} else {
			ok, err = s.bookingRepo.UpdateStatusCAS(ctx, id, existing.Status, target)
		}
		if err != nil {
			if errors.Is(err, domain.ErrIntervalOverlap) {
				return s.conflictError(ctx, existing, id)
			}
			return err
		}
		if !ok {
			// Lost the race against a concurrent transition; skip rather
			// than overwrite a status this update never observed.
			logger.Warn("Bulk status update lost compare-and-set race", "booking_id", id)
			continue
		}

		updated := *existing
		updated.Status = target
		if target != domain.BookingStatusVoid {
			updated.ExpireAt = nil
		}
		s.sink.Enqueue(Transition{
			Kind:             TransitionStatusChanged,
			Booking:          updated,
			From:             existing.Status,
			To:               target,
			ConstrainedActor: actor.Capability == domain.CapabilityConstrained,
		})
	}
	return nil
}

// Delete removes bookings and cascades to their additional-driver and
// contract records.
func (s *bookingService) Delete(ctx context.Context, ids []int32) error {
	for _, id := range ids {
		b, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		if err := s.contractRepo.DeleteByBookingID(ctx, id); err != nil {
			logger.Warn("Failed to delete contract record", "booking_id", id, "error", err)
		}
		if b.AdditionalDriverID != nil {
			if err := s.driverRepo.Delete(ctx, *b.AdditionalDriverID); err != nil {
				logger.Warn("Failed to delete additional driver", "booking_id", id, "error", err)
			}
		}
		if err := s.bookingRepo.Delete(ctx, id); err != nil {
			return err
		}
		logger.Info("Booking deleted", "booking_id", id, "number", b.Number)
	}
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, actor domain.Actor, id int32) error {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.Cancellation {
		return &domain.IllegalTransitionError{BookingID: id, Reason: "booking does not allow cancellation"}
	}
	if b.CancelRequested {
		return &domain.IllegalTransitionError{BookingID: id, Reason: "a cancellation request is already pending"}
	}

	ok, err := s.bookingRepo.SetCancelRequested(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.IllegalTransitionError{BookingID: id, Reason: "a cancellation request is already pending"}
	}

	b.CancelRequested = true
	s.sink.Enqueue(Transition{
		Kind:    TransitionCancelRequested,
		Booking: *b,
		From:    b.Status,
		To:      b.Status,
	})
	return nil
}

func (s *bookingService) Approve(ctx context.Context, approverID, id int32, notes string) (*domain.Booking, error) {
	ok, err := s.bookingRepo.Approve(ctx, id, approverID, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.approvalFailure(ctx, id, "approve")
	}

	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.Info("Booking approved", "booking_id", id, "approver_id", approverID)

	s.sink.Enqueue(Transition{
		Kind:    TransitionApproved,
		Booking: *b,
		From:    domain.BookingStatusPendingApproval,
		To:      domain.BookingStatusPaid,
		Notes:   notes,
	})
	return b, nil
}

func (s *bookingService) Reject(ctx context.Context, rejecterID, id int32, notes string) (*domain.Booking, error) {
	ok, err := s.bookingRepo.Reject(ctx, id, rejecterID, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.approvalFailure(ctx, id, "reject")
	}

	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.Info("Booking rejected", "booking_id", id, "rejecter_id", rejecterID)

	s.sink.Enqueue(Transition{
		Kind:    TransitionRejected,
		Booking: *b,
		From:    domain.BookingStatusPendingApproval,
		To:      domain.BookingStatusCancelled,
		Notes:   notes,
	})
	return b, nil
}

// approvalFailure distinguishes a missing booking from one that simply does
// not require approval. Both are errors; neither is a silent success.
func (s *bookingService) approvalFailure(ctx context.Context, id int32, op string) error {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &domain.IllegalTransitionError{
		BookingID: id,
		From:      b.Status,
		Reason:    fmt.Sprintf("cannot %s a booking that does not require approval", op),
	}
}

func (s *bookingService) ListPendingApprovals(ctx context.Context) ([]domain.Booking, error) {
	return s.bookingRepo.ListPendingApprovals(ctx)
}

func (s *bookingService) Get(ctx context.Context, id int32) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) ListByDriver(ctx context.Context, driverID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByDriver(ctx, driverID, status, page, pageSize)
}

func (s *bookingService) ListBySupplier(ctx context.Context, supplierID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListBySupplier(ctx, supplierID, status, page, pageSize)
}
