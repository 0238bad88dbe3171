package domain

import "time"

// Contract is the rental agreement document produced for a booking. At most
// one contract ever exists per booking; generation is idempotent and
// short-circuits when a record is already present.
type Contract struct {
	ID          int32     `json:"id"`
	BookingID   int32     `json:"booking_id"`
	FileKey     string    `json:"file_key"`
	FileName    string    `json:"file_name"`
	GeneratedOn time.Time `json:"generated_on"`
}
