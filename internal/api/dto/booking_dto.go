package dto

import (
	"time"

	"github.com/courtline/court-booking/internal/domain"
)

// BookRequest is the payload of POST /api/book.
type BookRequest struct {
	UserID    int64   `json:"user_id" validate:"required,gt=0"`
	FirstName string  `json:"first_name" validate:"max=256"`
	Username  *string `json:"username,omitempty" validate:"omitempty,max=64"`
	CourtType string  `json:"court_type" validate:"required,court_type"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot  string  `json:"time_slot" validate:"required,time_slot"`
}

// BookingResponse renders a stored booking.
type BookingResponse struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	CourtType domain.CourtType `json:"court_type"`
	Date      string           `json:"date"`
	TimeSlot  string           `json:"time_slot"`
	CreatedAt time.Time        `json:"created_at"`
}

// SlotResponse renders one availability cell.
type SlotResponse struct {
	CourtType   domain.CourtType `json:"court_type"`
	Date        string           `json:"date"`
	TimeSlot    string           `json:"time_slot"`
	IsAvailable bool             `json:"is_available"`
	BookedBy    *string          `json:"booked_by"`
	BookingID   *int64           `json:"booking_id"`
}

// NewBookingResponse maps a domain booking.
func NewBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		CourtType: b.CourtType,
		Date:      b.Date.Format(domain.DateLayout),
		TimeSlot:  b.TimeSlot,
		CreatedAt: b.CreatedAt,
	}
}

// NewBookingList maps bookings, always returning a non-nil slice.
func NewBookingList(bookings []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewBookingResponse(b))
	}
	return out
}

// NewSlotList maps availability views.
func NewSlotList(views []domain.SlotView) []SlotResponse {
	out := make([]SlotResponse, 0, len(views))
	for _, v := range views {
		out = append(out, SlotResponse{
			CourtType:   v.CourtType,
			Date:        v.Date.Format(domain.DateLayout),
			TimeSlot:    v.TimeSlot,
			IsAvailable: v.IsAvailable,
			BookedBy:    v.BookedBy,
			BookingID:   v.BookingID,
		})
	}
	return out
}
