package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/repository"
)

const userColumns = `id, email, phone_number, password_hash, name, role, verified, session_id,
	enable_email_notifications, push_token, created_on, updated_on`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, phone_number, password_hash, name, role, verified, session_id,
	              enable_email_notifications, push_token, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PhoneNumber, u.PasswordHash, u.Name, u.Role,
		u.Verified, u.SessionID, u.EnableEmailNotifications, u.PushToken, now, now).Scan(&u.ID)
	if err != nil {
		return err
	}
	u.CreatedOn = now
	u.UpdatedOn = now
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Name, &u.Role, &u.Verified,
		&u.SessionID, &u.EnableEmailNotifications, &u.PushToken, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email=$1, phone_number=$2, password_hash=$3, name=$4, role=$5, verified=$6,
	              session_id=$7, enable_email_notifications=$8, push_token=$9, updated_on=$10
	          WHERE id=$11`
	_, err := r.db.ExecContext(ctx, query, u.Email, u.PhoneNumber, u.PasswordHash, u.Name, u.Role,
		u.Verified, u.SessionID, u.EnableEmailNotifications, u.PushToken, time.Now(), u.ID)
	return err
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'ADMIN'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *u)
	}
	return admins, rows.Err()
}

// DeleteUnverifiedBySession guards the delete with a NOT EXISTS on bookings
// so an account whose checkout completed elsewhere is never removed.
func (r *userRepository) DeleteUnverifiedBySession(ctx context.Context, sessionID string) (bool, error) {
	query := `DELETE FROM users u
	          WHERE u.session_id = $1 AND u.verified = FALSE
	            AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.driver_id = u.id)`
	res, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
