package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/logger"
	"carhire-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "userID", n.UserID)

	query := `INSERT INTO notifications (user_id, message, booking_id, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Message, n.BookingID, n.IsRead, now).Scan(&n.ID)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "userID", n.UserID)
		return err
	}
	n.CreatedOn = now
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, message, booking_id, is_read, created_on
	          FROM notifications WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.BookingID, &n.IsRead, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2 AND is_read = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification not found, already read, or access denied")
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1`, userID)
	return err
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementUnread is a single atomic upsert, never read-modify-write, so
// concurrent fan-outs to the same user cannot lose increments.
func (r *notificationRepository) IncrementUnread(ctx context.Context, userID int32) error {
	query := `INSERT INTO notification_counters (user_id, count) VALUES ($1, 1)
	          ON CONFLICT (user_id) DO UPDATE SET count = notification_counters.count + 1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *notificationRepository) DecrementUnread(ctx context.Context, userID int32, by int32) error {
	query := `UPDATE notification_counters SET count = GREATEST(count - $2, 0) WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, by)
	return err
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID int32) (int32, error) {
	var count int32
	query := `SELECT count FROM notification_counters WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) ResetUnread(ctx context.Context, userID int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notification_counters SET count = 0 WHERE user_id = $1`, userID)
	return err
}
