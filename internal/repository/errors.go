package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names declared by the schema migration.
const (
	constraintUserDate = "bookings_user_date_key"
	constraintSlot     = "bookings_slot_key"

	sqlStateUniqueViolation = "23505"
)

var (
	// ErrUserDayConflict means the user already holds a booking on that date.
	ErrUserDayConflict = errors.New("user already has a booking on this date")
	// ErrSlotConflict means the (court, date, slot) triple is already booked.
	ErrSlotConflict = errors.New("slot already booked")
)

// classifyInsertError maps unique violations raised by the booking constraints to conflict errors.
func classifyInsertError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != sqlStateUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintUserDate:
		return ErrUserDayConflict
	case constraintSlot:
		return ErrSlotConflict
	}
	return err
}
