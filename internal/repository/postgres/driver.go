package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/repository"
)

type additionalDriverRepository struct {
	db *sql.DB
}

func NewAdditionalDriverRepository(db *sql.DB) repository.AdditionalDriverRepository {
	return &additionalDriverRepository{db: db}
}

func (r *additionalDriverRepository) Create(ctx context.Context, d *domain.AdditionalDriver) error {
	query := `INSERT INTO additional_drivers (full_name, email, phone, birth_date, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, d.FullName, d.Email, d.Phone, d.BirthDate, now).Scan(&d.ID)
	if err != nil {
		return err
	}
	d.CreatedOn = now
	return nil
}

func (r *additionalDriverRepository) GetByID(ctx context.Context, id int32) (*domain.AdditionalDriver, error) {
	d := &domain.AdditionalDriver{}
	query := `SELECT id, full_name, email, phone, birth_date, created_on FROM additional_drivers WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.FullName, &d.Email, &d.Phone, &d.BirthDate, &d.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *additionalDriverRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM additional_drivers WHERE id = $1`, id)
	return err
}
