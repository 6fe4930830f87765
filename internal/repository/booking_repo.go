package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookflow/internal/db"
	apperrors "bookflow/internal/errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation        = "23505"
	confirmedSlotIndexName = "bookings_confirmed_slot_idx"
)

// The no-double-booking invariant lives in the database, not in client code:
//
//	CREATE UNIQUE INDEX bookings_confirmed_slot_idx
//	    ON bookings (booking_date, booking_time)
//	    WHERE status = 'confirmed';
//
// InsertIfNoConflict is the only write path for new bookings, so two
// concurrent confirms for the same slot always resolve to one row and one
// unique violation regardless of interleaving.
type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

func (r *BookingRepository) FindConfirmed(ctx context.Context, date string) ([]db.Booking, error) {
	query := `
	SELECT id, code, booking_date, to_char(booking_time, 'HH24:MI'), duration_minutes,
	       user_name, user_email, user_phone, notes, status, created_at, updated_at
	FROM bookings
	WHERE booking_date = $1 AND status = 'confirmed'
	ORDER BY booking_time`

	rows, err := r.DB.QueryContext(ctx, query, date)
	if err != nil {
		return nil, &apperrors.StoreError{Op: "find confirmed bookings", Cause: err}
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.Code, &b.BookingDate, &b.BookingTime, &b.DurationMins,
			&b.UserName, &b.UserEmail, &b.UserPhone, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, &apperrors.StoreError{Op: "scan booking", Cause: err}
		}
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, &apperrors.StoreError{Op: "iterate bookings", Cause: err}
	}
	return bookings, nil
}

// InsertIfNoConflict persists a confirmed booking in a single statement. A
// unique violation on the confirmed-slot index maps to ConflictError; any
// other failure, including a violation of the bookings.code key, maps to
// StoreError. There is deliberately no prior SELECT.
func (r *BookingRepository) InsertIfNoConflict(ctx context.Context, booking *db.Booking) error {
	query := `
	INSERT INTO bookings
	(code, booking_date, booking_time, duration_minutes, user_name, user_email, user_phone, notes, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	RETURNING id, created_at, updated_at`

	err := r.DB.QueryRowContext(ctx, query,
		booking.Code,
		booking.BookingDate,
		booking.BookingTime,
		booking.DurationMins,
		booking.UserName,
		booking.UserEmail,
		booking.UserPhone,
		booking.Notes,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isSlotConflict(err) {
			return apperrors.NewConflict(booking.BookingDate.Format("2006-01-02"), booking.BookingTime)
		}
		return &apperrors.StoreError{Op: "insert booking", Cause: err}
	}
	return nil
}

// isSlotConflict matches only the confirmed-slot unique index. The bookings
// table carries a second unique key on code, and a collision there is not a
// slot conflict.
func isSlotConflict(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == confirmedSlotIndexName
}

func (r *BookingRepository) GetByCode(ctx context.Context, code, email string) (*db.Booking, error) {
	var b db.Booking
	query := `
	SELECT id, code, booking_date, to_char(booking_time, 'HH24:MI'), duration_minutes,
	       user_name, user_email, user_phone, notes, status, created_at, updated_at
	FROM bookings
	WHERE code = $1 AND user_email = $2`

	err := r.DB.QueryRowContext(ctx, query, code, email).Scan(
		&b.ID, &b.Code, &b.BookingDate, &b.BookingTime, &b.DurationMins,
		&b.UserName, &b.UserEmail, &b.UserPhone, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking with code '%s' not found: %w", code, err)
		}
		return nil, &apperrors.StoreError{Op: "get booking by code", Cause: err}
	}
	return &b, nil
}

// CancelBooking is a status transition, never a physical delete.
func (r *BookingRepository) CancelBooking(ctx context.Context, code string) error {
	query := `UPDATE bookings SET status = 'cancelled', updated_at = NOW() WHERE code = $1 AND status = 'confirmed'`
	result, err := r.DB.ExecContext(ctx, query, code)
	if err != nil {
		return &apperrors.StoreError{Op: "cancel booking", Cause: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no confirmed booking with code '%s'", code)
	}
	return nil
}

func (r *BookingRepository) ListBookings(ctx context.Context, date, status string) ([]db.Booking, error) {
	query := `
	SELECT id, code, booking_date, to_char(booking_time, 'HH24:MI'), duration_minutes,
	       user_name, user_email, user_phone, notes, status, created_at, updated_at
	FROM bookings
	WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += fmt.Sprintf(" AND booking_date = $%d", idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY booking_date DESC, booking_time"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &apperrors.StoreError{Op: "list bookings", Cause: err}
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.Code, &b.BookingDate, &b.BookingTime, &b.DurationMins,
			&b.UserName, &b.UserEmail, &b.UserPhone, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, &apperrors.StoreError{Op: "scan booking", Cause: err}
		}
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, &apperrors.StoreError{Op: "iterate bookings", Cause: err}
	}
	return bookings, nil
}
