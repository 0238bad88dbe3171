package service

import (
	"context"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

// Notify records an in-app notification and bumps the recipient's unread
// counter. The counter mutation is a storage-level atomic increment.
func (s *notificationService) Notify(ctx context.Context, userID int32, message string, bookingID *int32) error {
	n := &domain.Notification{
		UserID:    userID,
		Message:   message,
		BookingID: bookingID,
	}
	if err := s.noteRepo.Create(ctx, n); err != nil {
		return err
	}
	return s.noteRepo.IncrementUnread(ctx, userID)
}

func (s *notificationService) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	return s.noteRepo.List(ctx, userID, page, pageSize)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	return s.noteRepo.GetUnreadCount(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	if err := s.noteRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.noteRepo.DecrementUnread(ctx, userID, 1)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int32) error {
	if err := s.noteRepo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	return s.noteRepo.ResetUnread(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.Delete(ctx, notificationID, userID)
}
