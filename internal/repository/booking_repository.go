package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/courtline/court-booking/internal/domain"
)

// BookingRepository encapsulates booking persistence.
type BookingRepository interface {
	FindByUserAndDate(ctx context.Context, userID int64, date time.Time) (*domain.Booking, error)
	FindBySlot(ctx context.Context, court domain.CourtType, date time.Time, timeSlot string) (*domain.Booking, error)
	// Insert fails with ErrUserDayConflict or ErrSlotConflict when a unique constraint rejects the row.
	Insert(ctx context.Context, userID int64, court domain.CourtType, date time.Time, timeSlot string) (*domain.Booking, error)
	// Delete removes the booking only if it belongs to userID. It returns the removed
	// row, or nil when nothing matched.
	Delete(ctx context.Context, id, userID int64) (*domain.Booking, error)
	ListFuture(ctx context.Context, userID int64, asOf time.Time) ([]domain.Booking, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.SlotBooking, error)
}

type bookingRepository struct {
	q Querier
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(q Querier) BookingRepository {
	return &bookingRepository{q: q}
}

const bookingColumns = `id, user_id, court_type, date, time_slot, created_at`

func (r *bookingRepository) FindByUserAndDate(ctx context.Context, userID int64, date time.Time) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id=$1 AND date=$2`
	return r.fetchSingle(ctx, query, userID, date)
}

func (r *bookingRepository) FindBySlot(ctx context.Context, court domain.CourtType, date time.Time, timeSlot string) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE court_type=$1 AND date=$2 AND time_slot=$3`
	return r.fetchSingle(ctx, query, court, date, timeSlot)
}

func (r *bookingRepository) Insert(ctx context.Context, userID int64, court domain.CourtType, date time.Time, timeSlot string) (*domain.Booking, error) {
	const query = `
        INSERT INTO bookings (user_id, court_type, date, time_slot)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + bookingColumns

	var b domain.Booking
	err := r.q.QueryRow(ctx, query, userID, court, date, timeSlot).Scan(
		&b.ID,
		&b.UserID,
		&b.CourtType,
		&b.Date,
		&b.TimeSlot,
		&b.CreatedAt,
	)
	if err != nil {
		if classified := classifyInsertError(err); classified != err {
			return nil, classified
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return &b, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id, userID int64) (*domain.Booking, error) {
	const query = `DELETE FROM bookings WHERE id=$1 AND user_id=$2 RETURNING ` + bookingColumns

	b, err := r.fetchSingle(ctx, query, id, userID)
	if err != nil {
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) ListFuture(ctx context.Context, userID int64, asOf time.Time) ([]domain.Booking, error) {
	const query = `
        SELECT ` + bookingColumns + `
        FROM bookings
        WHERE user_id=$1 AND date >= $2
        ORDER BY date, time_slot`

	rows, err := r.q.Query(ctx, query, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	result := []domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.CourtType, &b.Date, &b.TimeSlot, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *bookingRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.SlotBooking, error) {
	const query = `
        SELECT b.id, b.user_id, b.court_type, b.date, b.time_slot, b.created_at, u.first_name
        FROM bookings b
        JOIN users u ON u.user_id = b.user_id
        WHERE b.date = $1
        ORDER BY b.court_type, b.time_slot`

	rows, err := r.q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings by date: %w", err)
	}
	defer rows.Close()

	var result []domain.SlotBooking
	for rows.Next() {
		var sb domain.SlotBooking
		if err := rows.Scan(
			&sb.ID,
			&sb.UserID,
			&sb.CourtType,
			&sb.Date,
			&sb.TimeSlot,
			&sb.CreatedAt,
			&sb.BookedBy,
		); err != nil {
			return nil, fmt.Errorf("scan slot booking: %w", err)
		}
		result = append(result, sb)
	}
	return result, rows.Err()
}

// fetchSingle returns nil, nil when no row matches.
func (r *bookingRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Booking, error) {
	var b domain.Booking
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&b.ID,
		&b.UserID,
		&b.CourtType,
		&b.Date,
		&b.TimeSlot,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}
