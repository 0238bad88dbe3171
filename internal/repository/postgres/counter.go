package postgres

import (
	"context"
	"database/sql"

	"carhire-backend/internal/repository"
)

type counterRepository struct {
	db *sql.DB
}

func NewCounterRepository(db *sql.DB) repository.CounterRepository {
	return &counterRepository{db: db}
}

// Next performs an atomic increment-and-read on the counter row for key
// (e.g. "booking-2026"). The upsert makes the first call of a new year create
// the row; concurrent callers each receive a distinct value.
func (r *counterRepository) Next(ctx context.Context, key string) (int64, error) {
	query := `INSERT INTO counters (key, value) VALUES ($1, 1)
	          ON CONFLICT (key) DO UPDATE SET value = counters.value + 1
	          RETURNING value`
	var value int64
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
