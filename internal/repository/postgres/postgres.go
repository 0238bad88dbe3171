package postgres

import (
	"database/sql"

	"carhire-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.CounterRepository
	repository.AdditionalDriverRepository
	repository.ContractRepository
	repository.NotificationRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                         db,
		BookingRepository:          NewBookingRepository(db),
		CounterRepository:          NewCounterRepository(db),
		AdditionalDriverRepository: NewAdditionalDriverRepository(db),
		ContractRepository:         NewContractRepository(db),
		NotificationRepository:     NewNotificationRepository(db),
		UserRepository:             NewUserRepository(db),
	}
}
