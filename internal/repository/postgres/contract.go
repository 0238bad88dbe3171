package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/repository"

	"github.com/lib/pq"
)

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) repository.ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, c *domain.Contract) error {
	query := `INSERT INTO contracts (booking_id, file_key, file_name, generated_on)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, c.BookingID, c.FileKey, c.FileName, now).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%w: booking %d", repository.ErrContractExists, c.BookingID)
		}
		return err
	}
	c.GeneratedOn = now
	return nil
}

func (r *contractRepository) GetByBookingID(ctx context.Context, bookingID int32) (*domain.Contract, error) {
	c := &domain.Contract{}
	query := `SELECT id, booking_id, file_key, file_name, generated_on FROM contracts WHERE booking_id = $1`
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&c.ID, &c.BookingID, &c.FileKey, &c.FileName, &c.GeneratedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) DeleteByBookingID(ctx context.Context, bookingID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contracts WHERE booking_id = $1`, bookingID)
	return err
}
