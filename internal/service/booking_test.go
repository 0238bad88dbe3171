package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"carhire-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testInterval() (time.Time, time.Time) {
	from := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return from, from.Add(72 * time.Hour)
}

func newTestBooking(status domain.BookingStatus) *domain.Booking {
	from, to := testInterval()
	return &domain.Booking{
		VehicleID:  7,
		SupplierID: 3,
		DriverID:   42,
		From:       from,
		To:         to,
		Status:     status,
		PriceCents: 45000,
	}
}

func counterKey() string {
	return fmt.Sprintf("booking-%d", time.Now().UTC().Year())
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	fullActor := domain.Actor{UserID: 42, Capability: domain.CapabilityFull}
	staffActor := domain.Actor{UserID: 9, Capability: domain.CapabilityConstrained}

	t.Run("HappyPath", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		counterRepo := new(MockCounterRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, counterRepo, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusPaid)
		bookingRepo.On("FindConflicting", ctx, int32(7), b.From, b.To, int32(0)).Return(nil, nil).Once()
		counterRepo.On("Next", ctx, counterKey()).Return(12, nil).Once()
		bookingRepo.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusPaid && !b.ApprovalRequired
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Booking).ID = 101
		}).Return(nil).Once()

		created, err := svc.Create(ctx, fullActor, b, nil)
		assert.NoError(t, err)
		assert.Equal(t, int32(101), created.ID)
		assert.Equal(t, fmt.Sprintf("%d-000012", time.Now().UTC().Year()), created.Number)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, TransitionCreated, transitions[0].Kind)
			assert.Equal(t, domain.BookingStatusPaid, transitions[0].To)
		}
		bookingRepo.AssertExpectations(t)
		counterRepo.AssertExpectations(t)
	})

	t.Run("PreflightConflict", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusReserved)
		busy := &domain.Interval{From: b.From.Add(-time.Hour), To: b.From.Add(time.Hour)}
		bookingRepo.On("FindConflicting", ctx, int32(7), b.From, b.To, int32(0)).Return(busy, nil).Once()

		_, err := svc.Create(ctx, fullActor, b, nil)
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Equal(t, *busy, conflict.Conflict)
		assert.Empty(t, sink.all())
		bookingRepo.AssertExpectations(t)
	})

	t.Run("NonBlockingStatusSkipsPreflight", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		counterRepo := new(MockCounterRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, counterRepo, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusPending)
		counterRepo.On("Next", ctx, counterKey()).Return(13, nil).Once()
		bookingRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.Create(ctx, fullActor, b, nil)
		assert.NoError(t, err)
		bookingRepo.AssertNotCalled(t, "FindConflicting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConstraintRaceMapsToConflict", func(t *testing.T) {
		// Pre-flight passes, then the exclusion constraint fires on insert.
		bookingRepo := new(MockBookingRepo)
		counterRepo := new(MockCounterRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, counterRepo, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusPaid)
		winner := &domain.Interval{From: b.From, To: b.To}
		bookingRepo.On("FindConflicting", ctx, int32(7), b.From, b.To, int32(0)).Return(nil, nil).Once()
		counterRepo.On("Next", ctx, counterKey()).Return(14, nil).Once()
		bookingRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("wrapped: %w", domain.ErrIntervalOverlap)).Once()
		bookingRepo.On("FindConflicting", ctx, int32(7), b.From, b.To, int32(0)).Return(winner, nil).Once()

		_, err := svc.Create(ctx, fullActor, b, nil)
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Equal(t, *winner, conflict.Conflict)
		assert.Empty(t, sink.all())
	})

	t.Run("StaffPaidIntercepted", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		counterRepo := new(MockCounterRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, counterRepo, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusPaid)
		bookingRepo.On("FindConflicting", ctx, int32(7), b.From, b.To, int32(0)).Return(nil, nil).Once()
		counterRepo.On("Next", ctx, counterKey()).Return(15, nil).Once()
		bookingRepo.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusPendingApproval &&
				b.ApprovalRequired &&
				b.CreatedBy != nil && *b.CreatedBy == int32(9)
		})).Return(nil).Once()

		created, err := svc.Create(ctx, staffActor, b, nil)
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPendingApproval, created.Status)
		bookingRepo.AssertExpectations(t)
	})

	t.Run("StaffNonPaidNotIntercepted", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		counterRepo := new(MockCounterRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, counterRepo, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusReserved)
		bookingRepo.On("FindConflicting", ctx, int32(7), b.From, b.To, int32(0)).Return(nil, nil).Once()
		counterRepo.On("Next", ctx, counterKey()).Return(16, nil).Once()
		bookingRepo.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusReserved && !b.ApprovalRequired
		})).Return(nil).Once()

		_, err := svc.Create(ctx, staffActor, b, nil)
		assert.NoError(t, err)
		bookingRepo.AssertExpectations(t)
	})

	t.Run("AdditionalDriverRollbackOnFailedCreate", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		counterRepo := new(MockCounterRepo)
		driverRepo := new(MockAdditionalDriverRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, counterRepo, driverRepo, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusPending)
		b.AdditionalDriver = true
		extra := &domain.AdditionalDriver{FullName: "Second Driver"}
		counterRepo.On("Next", ctx, counterKey()).Return(17, nil).Once()
		driverRepo.On("Create", ctx, extra).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.AdditionalDriver).ID = 55
		}).Return(nil).Once()
		bookingRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("insert failed")).Once()
		driverRepo.On("Delete", ctx, int32(55)).Return(nil).Once()

		_, err := svc.Create(ctx, fullActor, b, extra)
		assert.Error(t, err)
		driverRepo.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		svc := NewBookingService(nil, nil, nil, nil, nil, nil)

		b := newTestBooking(domain.BookingStatusPaid)
		b.From, b.To = b.To, b.From
		_, err := svc.Create(ctx, fullActor, b, nil)
		var invalid *domain.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "interval", invalid.Field)

		b = newTestBooking("SHINY")
		_, err = svc.Create(ctx, fullActor, b, nil)
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "status", invalid.Field)

		b = newTestBooking(domain.BookingStatusPaid)
		b.AdditionalDriver = true
		_, err = svc.Create(ctx, fullActor, b, nil)
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "additional_driver", invalid.Field)
	})
}

func TestBookingService_Update(t *testing.T) {
	ctx := context.Background()
	fullActor := domain.Actor{UserID: 1, Capability: domain.CapabilityFull}
	staffActor := domain.Actor{UserID: 9, Capability: domain.CapabilityConstrained}

	t.Run("IllegalTransitionFromPendingApproval", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		existing := newTestBooking(domain.BookingStatusPendingApproval)
		existing.ID = 10
		bookingRepo.On("GetByID", ctx, int32(10)).Return(existing, nil).Once()

		b := newTestBooking(domain.BookingStatusReserved)
		b.ID = 10
		_, err := svc.Update(ctx, fullActor, b)
		var illegal *domain.IllegalTransitionError
		assert.ErrorAs(t, err, &illegal)
		assert.Equal(t, domain.BookingStatusPendingApproval, illegal.From)
		assert.Empty(t, sink.all())
	})

	t.Run("CancelledIsTerminal", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), &captureSink{})

		existing := newTestBooking(domain.BookingStatusCancelled)
		existing.ID = 11
		bookingRepo.On("GetByID", ctx, int32(11)).Return(existing, nil).Once()

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 11
		_, err := svc.Update(ctx, fullActor, b)
		var illegal *domain.IllegalTransitionError
		assert.ErrorAs(t, err, &illegal)
	})

	t.Run("StaffEditToPaidIntercepted", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		existing := newTestBooking(domain.BookingStatusDeposit)
		existing.ID = 12
		bookingRepo.On("GetByID", ctx, int32(12)).Return(existing, nil).Once()
		bookingRepo.On("FindConflicting", ctx, int32(7), mock.Anything, mock.Anything, int32(12)).Return(nil, nil).Once()
		bookingRepo.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusPendingApproval && b.ApprovalRequired
		})).Return(nil).Once()

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 12
		updated, err := svc.Update(ctx, staffActor, b)
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPendingApproval, updated.Status)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, domain.BookingStatusDeposit, transitions[0].From)
			assert.Equal(t, domain.BookingStatusPendingApproval, transitions[0].To)
		}
	})

	t.Run("StaffEditAfterResolvedApprovalLandsOnPaid", func(t *testing.T) {
		// Once an approver has ruled on the booking, staff edits back to
		// PAID are not intercepted again. Re-interception would park the
		// booking outside the approval queue with no way out.
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		approverID := int32(1)
		approvedAt := time.Now().Add(-24 * time.Hour)
		existing := newTestBooking(domain.BookingStatusDeposit)
		existing.ID = 14
		existing.ApprovedBy = &approverID
		existing.ApprovedAt = &approvedAt
		bookingRepo.On("GetByID", ctx, int32(14)).Return(existing, nil).Once()
		bookingRepo.On("FindConflicting", ctx, int32(7), mock.Anything, mock.Anything, int32(14)).Return(nil, nil).Once()
		bookingRepo.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusPaid && !b.ApprovalRequired
		})).Return(nil).Once()

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 14
		updated, err := svc.Update(ctx, staffActor, b)
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPaid, updated.Status)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, domain.BookingStatusPaid, transitions[0].To)
			assert.True(t, transitions[0].ConstrainedActor)
		}
		bookingRepo.AssertExpectations(t)
	})

	t.Run("ExpiryClearedOnLeavingVoid", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), &captureSink{})

		expire := time.Now().Add(time.Hour)
		existing := newTestBooking(domain.BookingStatusVoid)
		existing.ID = 13
		existing.ExpireAt = &expire
		bookingRepo.On("GetByID", ctx, int32(13)).Return(existing, nil).Once()
		bookingRepo.On("FindConflicting", ctx, int32(7), mock.Anything, mock.Anything, int32(13)).Return(nil, nil).Once()
		bookingRepo.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.ExpireAt == nil
		})).Return(nil).Once()

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 13
		b.ExpireAt = &expire
		_, err := svc.Update(ctx, fullActor, b)
		assert.NoError(t, err)
		bookingRepo.AssertExpectations(t)
	})
}

func TestBookingService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	fullActor := domain.Actor{UserID: 1, Capability: domain.CapabilityFull}
	staffActor := domain.Actor{UserID: 9, Capability: domain.CapabilityConstrained}

	t.Run("SameStatusIsNoOp", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		existing := newTestBooking(domain.BookingStatusPaid)
		existing.ID = 20
		bookingRepo.On("GetByID", ctx, int32(20)).Return(existing, nil).Once()

		err := svc.UpdateStatus(ctx, fullActor, []int32{20}, domain.BookingStatusPaid)
		assert.NoError(t, err)
		assert.Empty(t, sink.all())
		bookingRepo.AssertNotCalled(t, "UpdateStatusCAS", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("IllegalTargetSkipped", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		cancelled := newTestBooking(domain.BookingStatusCancelled)
		cancelled.ID = 21
		open := newTestBooking(domain.BookingStatusDeposit)
		open.ID = 22
		bookingRepo.On("GetByID", ctx, int32(21)).Return(cancelled, nil).Once()
		bookingRepo.On("GetByID", ctx, int32(22)).Return(open, nil).Once()
		bookingRepo.On("UpdateStatusCAS", ctx, int32(22), domain.BookingStatusDeposit, domain.BookingStatusPaid).Return(true, nil).Once()

		err := svc.UpdateStatus(ctx, fullActor, []int32{21, 22}, domain.BookingStatusPaid)
		assert.NoError(t, err)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, int32(22), transitions[0].Booking.ID)
		}
	})

	t.Run("StaffBulkPaidIntercepted", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		existing := newTestBooking(domain.BookingStatusDeposit)
		existing.ID = 23
		bookingRepo.On("GetByID", ctx, int32(23)).Return(existing, nil).Once()
		bookingRepo.On("MarkPendingApproval", ctx, int32(23), domain.BookingStatusDeposit, int32(9)).Return(true, nil).Once()

		err := svc.UpdateStatus(ctx, staffActor, []int32{23}, domain.BookingStatusPaid)
		assert.NoError(t, err)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, domain.BookingStatusPendingApproval, transitions[0].To)
		}
		bookingRepo.AssertExpectations(t)
	})

	t.Run("StaffBulkAfterResolvedApprovalNotReintercepted", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		approverID := int32(1)
		existing := newTestBooking(domain.BookingStatusDeposit)
		existing.ID = 25
		existing.ApprovedBy = &approverID
		bookingRepo.On("GetByID", ctx, int32(25)).Return(existing, nil).Once()
		bookingRepo.On("UpdateStatusCAS", ctx, int32(25), domain.BookingStatusDeposit, domain.BookingStatusPaid).Return(true, nil).Once()

		err := svc.UpdateStatus(ctx, staffActor, []int32{25}, domain.BookingStatusPaid)
		assert.NoError(t, err)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, domain.BookingStatusPaid, transitions[0].To)
			assert.True(t, transitions[0].ConstrainedActor)
		}
		bookingRepo.AssertNotCalled(t, "MarkPendingApproval", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRaceSkipped", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		existing := newTestBooking(domain.BookingStatusDeposit)
		existing.ID = 24
		bookingRepo.On("GetByID", ctx, int32(24)).Return(existing, nil).Once()
		bookingRepo.On("UpdateStatusCAS", ctx, int32(24), domain.BookingStatusDeposit, domain.BookingStatusReserved).Return(false, nil).Once()

		err := svc.UpdateStatus(ctx, fullActor, []int32{24}, domain.BookingStatusReserved)
		assert.NoError(t, err)
		assert.Empty(t, sink.all())
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{UserID: 42, Capability: domain.CapabilityFull}

	t.Run("HappyPath", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 30
		b.Cancellation = true
		bookingRepo.On("GetByID", ctx, int32(30)).Return(b, nil).Once()
		bookingRepo.On("SetCancelRequested", ctx, int32(30)).Return(true, nil).Once()

		err := svc.Cancel(ctx, actor, 30)
		assert.NoError(t, err)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, TransitionCancelRequested, transitions[0].Kind)
			assert.True(t, transitions[0].Booking.CancelRequested)
		}
	})

	t.Run("OptionNotBooked", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), &captureSink{})

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 31
		bookingRepo.On("GetByID", ctx, int32(31)).Return(b, nil).Once()

		err := svc.Cancel(ctx, actor, 31)
		var illegal *domain.IllegalTransitionError
		assert.ErrorAs(t, err, &illegal)
	})

	t.Run("AlreadyRequested", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), &captureSink{})

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 32
		b.Cancellation = true
		b.CancelRequested = true
		bookingRepo.On("GetByID", ctx, int32(32)).Return(b, nil).Once()

		err := svc.Cancel(ctx, actor, 32)
		var illegal *domain.IllegalTransitionError
		assert.ErrorAs(t, err, &illegal)
	})
}

func TestBookingService_ApproveReject(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		approved := newTestBooking(domain.BookingStatusPaid)
		approved.ID = 40
		bookingRepo.On("Approve", ctx, int32(40), int32(1), "looks good").Return(true, nil).Once()
		bookingRepo.On("GetByID", ctx, int32(40)).Return(approved, nil).Once()

		b, err := svc.Approve(ctx, 1, 40, "looks good")
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPaid, b.Status)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, TransitionApproved, transitions[0].Kind)
			assert.Equal(t, "looks good", transitions[0].Notes)
		}
	})

	t.Run("ApproveNotPending", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		b := newTestBooking(domain.BookingStatusPaid)
		b.ID = 41
		bookingRepo.On("Approve", ctx, int32(41), int32(1), "").Return(false, nil).Once()
		bookingRepo.On("GetByID", ctx, int32(41)).Return(b, nil).Once()

		_, err := svc.Approve(ctx, 1, 41, "")
		var illegal *domain.IllegalTransitionError
		assert.ErrorAs(t, err, &illegal)
		assert.Empty(t, sink.all())
	})

	t.Run("ApproveMissing", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), &captureSink{})

		bookingRepo.On("Approve", ctx, int32(42), int32(1), "").Return(false, nil).Once()
		bookingRepo.On("GetByID", ctx, int32(42)).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.Approve(ctx, 1, 42, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Reject", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		sink := &captureSink{}
		svc := NewBookingService(bookingRepo, nil, nil, nil, NewConflictChecker(bookingRepo), sink)

		rejected := newTestBooking(domain.BookingStatusCancelled)
		rejected.ID = 43
		bookingRepo.On("Reject", ctx, int32(43), int32(2), "no availability").Return(true, nil).Once()
		bookingRepo.On("GetByID", ctx, int32(43)).Return(rejected, nil).Once()

		b, err := svc.Reject(ctx, 2, 43, "no availability")
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, b.Status)

		transitions := sink.all()
		if assert.Len(t, transitions, 1) {
			assert.Equal(t, TransitionRejected, transitions[0].Kind)
		}
	})
}

func TestBookingService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	bookingRepo := new(MockBookingRepo)
	driverRepo := new(MockAdditionalDriverRepo)
	contractRepo := new(MockContractRepo)
	svc := NewBookingService(bookingRepo, nil, driverRepo, contractRepo, NewConflictChecker(bookingRepo), &captureSink{})

	extraID := int32(5)
	b := newTestBooking(domain.BookingStatusCancelled)
	b.ID = 50
	b.AdditionalDriverID = &extraID
	bookingRepo.On("GetByID", ctx, int32(50)).Return(b, nil).Once()
	contractRepo.On("DeleteByBookingID", ctx, int32(50)).Return(nil).Once()
	driverRepo.On("Delete", ctx, extraID).Return(nil).Once()
	bookingRepo.On("Delete", ctx, int32(50)).Return(nil).Once()

	// Missing bookings are skipped, not failed.
	bookingRepo.On("GetByID", ctx, int32(51)).Return(nil, domain.ErrNotFound).Once()

	err := svc.Delete(ctx, []int32{50, 51})
	assert.NoError(t, err)
	bookingRepo.AssertExpectations(t)
	driverRepo.AssertExpectations(t)
	contractRepo.AssertExpectations(t)
}
