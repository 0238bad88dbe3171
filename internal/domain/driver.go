package domain

import "time"

// AdditionalDriver is the optional second-driver record owned by exactly one
// booking. It is deleted whenever the owning booking stops referencing it or
// is deleted.
type AdditionalDriver struct {
	ID        int32     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate time.Time `json:"birth_date"`
	CreatedOn time.Time `json:"created_on"`
}
