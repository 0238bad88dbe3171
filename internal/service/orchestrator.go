package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/logger"
	"carhire-backend/internal/repository"
)

type TransitionKind string

const (
	TransitionCreated         TransitionKind = "CREATED"
	TransitionStatusChanged   TransitionKind = "STATUS_CHANGED"
	TransitionApproved        TransitionKind = "APPROVED"
	TransitionRejected        TransitionKind = "REJECTED"
	TransitionCancelRequested TransitionKind = "CANCEL_REQUESTED"
)

// Transition is a committed state change handed off by the state machine.
// It carries a copy of the booking as it was at commit time.
type Transition struct {
	Kind    TransitionKind
	Booking domain.Booking
	From    domain.BookingStatus
	To      domain.BookingStatus
	Notes   string
	// ConstrainedActor marks transitions committed by a constrained actor;
	// those keep the privileged side informed even when no approval was
	// intercepted.
	ConstrainedActor bool
}

// Orchestrator performs the side effects of committed transitions: contract
// generation and notification fan-out. Transitions are sharded onto workers
// by booking id, so effects for one booking run in commit order while
// different bookings proceed in parallel. Every effect runs under a bounded
// timeout; failures are logged for manual retry and never surface to the
// request that committed the transition.
type Orchestrator struct {
	contractRepo repository.ContractRepository
	userRepo     repository.UserRepository
	notifySvc    NotificationService
	emailSvc     EmailService
	pushSvc      PushService
	docSvc       DocumentService

	timeout time.Duration
	queues  []chan Transition
	wg      sync.WaitGroup
	once    sync.Once
}

func NewOrchestrator(
	contractRepo repository.ContractRepository,
	userRepo repository.UserRepository,
	notifySvc NotificationService,
	emailSvc EmailService,
	pushSvc PushService,
	docSvc DocumentService,
	workers int,
	timeout time.Duration,
) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	o := &Orchestrator{
		contractRepo: contractRepo,
		userRepo:     userRepo,
		notifySvc:    notifySvc,
		emailSvc:     emailSvc,
		pushSvc:      pushSvc,
		docSvc:       docSvc,
		timeout:      timeout,
		queues:       make([]chan Transition, workers),
	}
	for i := range o.queues {
		o.queues[i] = make(chan Transition, 64)
	}
	return o
}

// Start launches the worker goroutines.
func (o *Orchestrator) Start() {
	o.once.Do(func() {
		for i := range o.queues {
			o.wg.Add(1)
			go func(queue chan Transition) {
				defer o.wg.Done()
				for t := range queue {
					o.process(t)
				}
			}(o.queues[i])
		}
	})
}

// Stop drains the queues and waits for in-flight side effects.
func (o *Orchestrator) Stop() {
	for _, q := range o.queues {
		close(q)
	}
	o.wg.Wait()
}

var errQueueSaturated = errors.New("transition queue is full")

// Enqueue hands a committed transition to its booking's worker shard. The
// send never blocks the committing request: when a shard is saturated the
// transition is dropped and logged for manual retry, like any other failed
// side effect.
func (o *Orchestrator) Enqueue(t Transition) {
	shard := int(t.Booking.ID) % len(o.queues)
	if shard < 0 {
		shard = -shard
	}
	select {
	case o.queues[shard] <- t:
	default:
		logger.SideEffectFailure("transition_enqueue", errQueueSaturated,
			"booking_id", t.Booking.ID, "kind", t.Kind, "to", t.To)
	}
}

func (o *Orchestrator) process(t Transition) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Side effect processing panicked", "booking_id", t.Booking.ID, "panic", r)
		}
	}()

	if t.To == domain.BookingStatusPaid {
		o.generateContract(t)
	}
	o.fanOut(t)
}

// generateContract produces the rental agreement exactly once per booking.
// The existence lookup short-circuits repeats; the unique constraint on
// contracts.booking_id catches the remaining race.
func (o *Orchestrator) generateContract(t Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	b := t.Booking
	if _, err := o.contractRepo.GetByBookingID(ctx, b.ID); err == nil {
		logger.Debug("Contract already exists, skipping generation", "booking_id", b.ID)
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.SideEffectFailure("contract_generation", err, "booking_id", b.ID, "stage", "lookup")
		return
	}

	logger.ExternalServiceCall("document-generator", "GenerateContract", "booking_id", b.ID)
	contract, err := o.docSvc.GenerateContract(ctx, &b)
	logger.ExternalServiceResult("document-generator", "GenerateContract", err, "booking_id", b.ID)
	if err != nil {
		logger.SideEffectFailure("contract_generation", err, "booking_id", b.ID, "number", b.Number)
		return
	}

	if err := o.contractRepo.Create(ctx, contract); err != nil {
		// A concurrent generation winning the unique-constraint race is not
		// a failure.
		if errors.Is(err, repository.ErrContractExists) {
			return
		}
		logger.SideEffectFailure("contract_generation", err, "booking_id", b.ID, "stage", "record")
	}
}

// fanOut delivers in-app, email, and push notifications for a transition.
// Every recipient and every channel fails independently.
func (o *Orchestrator) fanOut(t Transition) {
	b := t.Booking

	// The driver hears about every status change on their booking.
	switch t.Kind {
	case TransitionCreated:
		o.notifyUser(b.DriverID, fmt.Sprintf("Your booking %s has been created (%s).", b.Number, b.Status), &b, t)
	case TransitionApproved:
		o.notifyUser(b.DriverID, fmt.Sprintf("Your booking %s has been confirmed.", b.Number), &b, t)
	case TransitionRejected:
		o.notifyUser(b.DriverID, fmt.Sprintf("Your booking %s has been cancelled.", b.Number), &b, t)
	case TransitionStatusChanged:
		o.notifyUser(b.DriverID, fmt.Sprintf("Your booking %s is now %s.", b.Number, t.To), &b, t)
	}

	// Admins hear about new bookings, cancellation requests, and any status
	// a constrained actor set without going through approval.
	if t.Kind == TransitionCreated || t.Kind == TransitionCancelRequested ||
		(t.ConstrainedActor && t.Kind == TransitionStatusChanged) {
		o.notifyAdmins(t)
	}

	// The staff creator hears how their approval request was resolved.
	if (t.Kind == TransitionApproved || t.Kind == TransitionRejected) && b.CreatedBy != nil {
		outcome := "approved"
		if t.Kind == TransitionRejected {
			outcome = "rejected"
		}
		msg := fmt.Sprintf("Booking %s was %s.", b.Number, outcome)
		if t.Notes != "" {
			msg = fmt.Sprintf("%s Notes: %s", msg, t.Notes)
		}
		o.notifyCreator(*b.CreatedBy, msg, t)
	}
}

func (o *Orchestrator) notifyUser(userID int32, message string, b *domain.Booking, t Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	user, err := o.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.SideEffectFailure("notification", err, "booking_id", b.ID, "user_id", userID, "stage", "recipient_lookup")
		return
	}

	if err := o.notifySvc.Notify(ctx, userID, message, &b.ID); err != nil {
		logger.SideEffectFailure("in_app_notification", err, "booking_id", b.ID, "user_id", userID)
	}
	o.dispatchExternal(ctx, user, message, b, t)
}

func (o *Orchestrator) dispatchExternal(ctx context.Context, user *domain.User, message string, b *domain.Booking, t Transition) {
	if user.EnableEmailNotifications {
		var err error
		switch t.Kind {
		case TransitionCreated:
			err = o.emailSvc.SendBookingCreatedNotification(ctx, user.Email, user.Name, b.Number, b.From, b.To)
		case TransitionApproved, TransitionRejected:
			err = o.emailSvc.SendApprovalOutcomeNotification(ctx, user.Email, b.Number, t.Kind == TransitionApproved, t.Notes)
		default:
			err = o.emailSvc.SendBookingStatusNotification(ctx, user.Email, user.Name, b.Number, t.To)
		}
		if err != nil {
			logger.SideEffectFailure("email_notification", err, "booking_id", b.ID, "user_id", user.ID)
		}
	}
	if user.PushToken != "" {
		data := map[string]string{"booking_id": fmt.Sprintf("%d", b.ID)}
		if err := o.pushSvc.Send(ctx, user.PushToken, "Booking update", message, data); err != nil {
			logger.SideEffectFailure("push_notification", err, "booking_id", b.ID, "user_id", user.ID)
		}
	}
}

func (o *Orchestrator) notifyAdmins(t Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	admins, err := o.userRepo.ListAdmins(ctx)
	if err != nil {
		logger.SideEffectFailure("notification", err, "booking_id", t.Booking.ID, "stage", "admin_lookup")
		return
	}

	b := t.Booking
	var message string
	switch t.Kind {
	case TransitionCancelRequested:
		message = fmt.Sprintf("Cancellation requested for booking %s.", b.Number)
	case TransitionStatusChanged:
		message = fmt.Sprintf("Booking %s was set to %s by staff.", b.Number, t.To)
	default:
		message = fmt.Sprintf("New booking %s created (%s).", b.Number, b.Status)
	}

	for _, admin := range admins {
		if err := o.notifySvc.Notify(ctx, admin.ID, message, &b.ID); err != nil {
			logger.SideEffectFailure("in_app_notification", err, "booking_id", b.ID, "user_id", admin.ID)
		}
		if admin.EnableEmailNotifications {
			var err error
			switch {
			case t.Kind == TransitionCancelRequested:
				err = o.emailSvc.SendCancelRequestNotification(ctx, admin.Email, fmt.Sprintf("driver %d", b.DriverID), b.Number)
			case t.Kind == TransitionStatusChanged:
				err = o.emailSvc.SendBookingStatusNotification(ctx, admin.Email, admin.Name, b.Number, t.To)
			case b.ApprovalRequired:
				err = o.emailSvc.SendApprovalRequestNotification(ctx, admin.Email, fmt.Sprintf("staff %d", valueOrZero(b.CreatedBy)), b.Number)
			default:
				err = o.emailSvc.SendBookingCreatedNotification(ctx, admin.Email, admin.Name, b.Number, b.From, b.To)
			}
			if err != nil {
				logger.SideEffectFailure("email_notification", err, "booking_id", b.ID, "user_id", admin.ID)
			}
		}
	}
}

func (o *Orchestrator) notifyCreator(creatorID int32, message string, t Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	creator, err := o.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		logger.SideEffectFailure("notification", err, "booking_id", t.Booking.ID, "user_id", creatorID, "stage", "creator_lookup")
		return
	}

	if err := o.notifySvc.Notify(ctx, creatorID, message, &t.Booking.ID); err != nil {
		logger.SideEffectFailure("in_app_notification", err, "booking_id", t.Booking.ID, "user_id", creatorID)
	}
	if creator.EnableEmailNotifications {
		if err := o.emailSvc.SendApprovalOutcomeNotification(ctx, creator.Email, t.Booking.Number, t.Kind == TransitionApproved, t.Notes); err != nil {
			logger.SideEffectFailure("email_notification", err, "booking_id", t.Booking.ID, "user_id", creatorID)
		}
	}
}

func valueOrZero(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}
