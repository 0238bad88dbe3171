package domain

import "time"

type Notification struct {
	ID        int32     `json:"id"`
	UserID    int32     `json:"user_id"`
	Message   string    `json:"message"`
	BookingID *int32    `json:"booking_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedOn time.Time `json:"created_on"`
}

// NotificationCounter tracks the per-user unread count. It is mutated via
// atomic increments at the storage layer, never read-modify-write.
type NotificationCounter struct {
	UserID int32 `json:"user_id"`
	Count  int32 `json:"count"`
}
