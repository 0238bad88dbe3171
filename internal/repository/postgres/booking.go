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

// Postgres error codes that back the no-double-booking guarantee. The
// bookings table carries an exclusion constraint over
// (vehicle_id, tstzrange(from_time, to_time)) restricted to blocking
// statuses; see scripts/schema.sql.
const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

const bookingColumns = `id, number, vehicle_id, supplier_id, driver_id, additional_driver_id, created_by,
	from_time, to_time, status, cancellation, amendments, theft_protection, collision_damage_waiver,
	full_insurance, additional_driver, price_cents, cancel_requested, approval_required,
	approved_by, approved_at, rejected_by, rejected_at, approval_notes,
	expire_at, session_id, payment_intent_id, created_on, updated_on`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

// mapWriteError converts constraint violations into the overlap sentinel so
// the service layer can report the conflicting interval to the caller.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
		return fmt.Errorf("%w: %s", domain.ErrIntervalOverlap, pqErr.Detail)
	}
	return err
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (number, vehicle_id, supplier_id, driver_id, additional_driver_id, created_by,
		from_time, to_time, status, cancellation, amendments, theft_protection, collision_damage_waiver,
		full_insurance, additional_driver, price_cents, approval_required, expire_at, session_id, payment_intent_id,
		created_on, updated_on)
	    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	    RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		b.Number, b.VehicleID, b.SupplierID, b.DriverID, b.AdditionalDriverID, b.CreatedBy,
		b.From, b.To, b.Status, b.Cancellation, b.Amendments, b.TheftProtection, b.CollisionDamageWaiver,
		b.FullInsurance, b.AdditionalDriver, b.PriceCents, b.ApprovalRequired, b.ExpireAt, b.SessionID, b.PaymentIntentID,
		now, now,
	).Scan(&b.ID)
	if err != nil {
		return mapWriteError(err)
	}
	b.CreatedOn = now
	b.UpdatedOn = now
	return nil
}

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.Number, &b.VehicleID, &b.SupplierID, &b.DriverID, &b.AdditionalDriverID, &b.CreatedBy,
		&b.From, &b.To, &b.Status, &b.Cancellation, &b.Amendments, &b.TheftProtection, &b.CollisionDamageWaiver,
		&b.FullInsurance, &b.AdditionalDriver, &b.PriceCents, &b.CancelRequested, &b.ApprovalRequired,
		&b.ApprovedBy, &b.ApprovedAt, &b.RejectedBy, &b.RejectedAt, &b.ApprovalNotes,
		&b.ExpireAt, &b.SessionID, &b.PaymentIntentID, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET vehicle_id=$1, supplier_id=$2, driver_id=$3, additional_driver_id=$4,
		from_time=$5, to_time=$6, status=$7, cancellation=$8, amendments=$9, theft_protection=$10,
		collision_damage_waiver=$11, full_insurance=$12, additional_driver=$13, price_cents=$14,
		cancel_requested=$15, approval_required=$16, expire_at=$17, session_id=$18, payment_intent_id=$19,
		updated_on=$20
	    WHERE id=$21`
	res, err := r.db.ExecContext(ctx, query,
		b.VehicleID, b.SupplierID, b.DriverID, b.AdditionalDriverID,
		b.From, b.To, b.Status, b.Cancellation, b.Amendments, b.TheftProtection,
		b.CollisionDamageWaiver, b.FullInsurance, b.AdditionalDriver, b.PriceCents,
		b.CancelRequested, b.ApprovalRequired, b.ExpireAt, b.SessionID, b.PaymentIntentID,
		time.Now(), b.ID)
	if err != nil {
		return mapWriteError(err)
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

func (r *bookingRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return err
}

func (r *bookingRepository) FindConflicting(ctx context.Context, vehicleID int32, from, to time.Time, excludeID int32) (*domain.Interval, error) {
	// Half-open overlap test: [a,b) and [c,d) overlap iff a < d AND c < b.
	query := `SELECT from_time, to_time FROM bookings
	          WHERE vehicle_id = $1
	            AND status IN ('PAID', 'RESERVED', 'DEPOSIT', 'PENDING_APPROVAL')
	            AND from_time < $3 AND $2 < to_time
	            AND id <> $4
	          LIMIT 1`
	var iv domain.Interval
	err := r.db.QueryRowContext(ctx, query, vehicleID, from, to, excludeID).Scan(&iv.From, &iv.To)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *bookingRepository) UpdateStatusCAS(ctx context.Context, id int32, prev, next domain.BookingStatus) (bool, error) {
	// Leaving VOID clears expire_at in the same statement so a provisional
	// booking can never keep its expiry once it is real.
	query := `UPDATE bookings SET status=$1,
	              expire_at = CASE WHEN $1 = 'VOID' THEN expire_at ELSE NULL END,
	              updated_on=$2
	          WHERE id=$3 AND status=$4`
	res, err := r.db.ExecContext(ctx, query, next, time.Now(), id, prev)
	if err != nil {
		return false, mapWriteError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *bookingRepository) MarkPendingApproval(ctx context.Context, id int32, prev domain.BookingStatus, createdBy int32) (bool, error) {
	query := `UPDATE bookings SET status='PENDING_APPROVAL', approval_required=TRUE, created_by=$1,
	              expire_at=NULL, updated_on=$2
	          WHERE id=$3 AND status=$4 AND approved_by IS NULL AND rejected_by IS NULL`
	res, err := r.db.ExecContext(ctx, query, createdBy, time.Now(), id, prev)
	if err != nil {
		return false, mapWriteError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *bookingRepository) Approve(ctx context.Context, id, approverID int32, notes string) (bool, error) {
	query := `UPDATE bookings SET status='PAID', approval_required=FALSE,
	              approved_by=$1, approved_at=$2, approval_notes=$3, updated_on=$2
	          WHERE id=$4 AND approval_required=TRUE`
	res, err := r.db.ExecContext(ctx, query, approverID, time.Now(), notes, id)
	if err != nil {
		return false, mapWriteError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *bookingRepository) Reject(ctx context.Context, id, rejecterID int32, notes string) (bool, error) {
	query := `UPDATE bookings SET status='CANCELLED', approval_required=FALSE,
	              rejected_by=$1, rejected_at=$2, approval_notes=$3, updated_on=$2
	          WHERE id=$4 AND approval_required=TRUE`
	res, err := r.db.ExecContext(ctx, query, rejecterID, time.Now(), notes, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *bookingRepository) SetCancelRequested(ctx context.Context, id int32) (bool, error) {
	query := `UPDATE bookings SET cancel_requested=TRUE, updated_on=$1
	          WHERE id=$2 AND cancel_requested=FALSE`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *bookingRepository) ListPendingApprovals(ctx context.Context) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE approval_required = TRUE ORDER BY created_on ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListByDriver(ctx context.Context, driverID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "driver_id", driverID, status, page, pageSize)
}

func (r *bookingRepository) ListBySupplier(ctx context.Context, supplierID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "supplier_id", supplierID, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, column string, id int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1`
	args := []any{id}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) ListExpired(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = 'VOID' AND expire_at IS NOT NULL AND expire_at < $1`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepository) DeleteExpired(ctx context.Context, id int32, now time.Time) (bool, error) {
	// The status and expiry re-check lives inside the DELETE predicate: a
	// booking that left VOID between the sweep's read and this call is not
	// touched.
	query := `DELETE FROM bookings
	          WHERE id = $1 AND status = 'VOID' AND expire_at IS NOT NULL AND expire_at < $2`
	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
