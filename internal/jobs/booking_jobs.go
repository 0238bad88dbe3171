package jobs

import (
	"context"
	"time"

	"carhire-backend/internal/logger"
)

// ReapExpiredBookings removes provisional bookings whose payment never
// arrived, together with the per-booking records they own. The DELETE
// re-checks status and expiry itself, so a booking that was paid between the
// list and the delete survives the sweep.
func (jr *JobRunner) ReapExpiredBookings() {
	jr.runWithRecovery("ReapExpiredBookings", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		now := time.Now()
		expired, err := jr.store.ListExpired(ctx, now)
		if err != nil {
			logger.Error("Failed to list expired bookings", "error", err)
			return
		}
		if len(expired) == 0 {
			return
		}

		reaped := 0
		for _, b := range expired {
			deleted, err := jr.store.DeleteExpired(ctx, b.ID, now)
			if err != nil {
				logger.Error("Failed to delete expired booking", "booking_id", b.ID, "error", err)
				continue
			}
			if !deleted {
				// The booking left VOID after we listed it.
				logger.Debug("Skipping booking no longer expired", "booking_id", b.ID)
				continue
			}
			reaped++

			if b.AdditionalDriverID != nil {
				if err := jr.store.AdditionalDriverRepository.Delete(ctx, *b.AdditionalDriverID); err != nil {
					logger.Error("Failed to delete additional driver for expired booking",
						"booking_id", b.ID, "additional_driver_id", *b.AdditionalDriverID, "error", err)
				}
			}

			// The provisional account the checkout session created goes with
			// its booking, unless the driver verified or booked again.
			if b.SessionID != "" {
				removed, err := jr.store.DeleteUnverifiedBySession(ctx, b.SessionID)
				if err != nil {
					logger.Error("Failed to delete provisional driver account",
						"booking_id", b.ID, "session_id", b.SessionID, "error", err)
				} else if removed {
					logger.Info("Removed provisional driver account", "session_id", b.SessionID)
				}
			}
		}

		logger.Info("Reaped expired bookings", "listed", len(expired), "reaped", reaped)
	})
}

// SendApprovalReminders nudges admins about bookings still waiting on
// approval. Failures on one recipient never block the rest.
func (jr *JobRunner) SendApprovalReminders() {
	jr.runWithRecovery("SendApprovalReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		pending, err := jr.store.ListPendingApprovals(ctx)
		if err != nil {
			logger.Error("Failed to list pending approvals", "error", err)
			return
		}
		if len(pending) == 0 {
			return
		}

		admins, err := jr.store.ListAdmins(ctx)
		if err != nil {
			logger.Error("Failed to list admins", "error", err)
			return
		}

		for _, b := range pending {
			staffName := ""
			if b.CreatedBy != nil {
				if staff, err := jr.store.UserRepository.GetByID(ctx, *b.CreatedBy); err == nil {
					staffName = staff.Name
				}
			}
			for _, admin := range admins {
				if !admin.EnableEmailNotifications {
					continue
				}
				if err := jr.services.Email.SendApprovalRequestNotification(ctx, admin.Email, staffName, b.Number); err != nil {
					logger.SideEffectFailure("approval_reminder_email", err, "booking_id", b.ID, "recipient", admin.Email)
				}
			}
		}

		logger.Info("Sent approval reminders", "pending", len(pending), "admins", len(admins))
	})
}
