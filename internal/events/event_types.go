package events

import (
	"time"

	"github.com/courtline/court-booking/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated   EventType = "booking_created"
	EventBookingCancelled EventType = "booking_cancelled"
)

// Event represents a domain event emitted by services after a commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BookingID int64       `json:"booking_id"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BookingPayload describes the slot a booking event refers to.
type BookingPayload struct {
	CourtType   domain.CourtType `json:"court_type"`
	Date        string           `json:"date"`
	TimeSlot    string           `json:"time_slot"`
	DisplayName string           `json:"display_name,omitempty"`
}

// NewBookingPayload builds the payload for b.
func NewBookingPayload(b *domain.Booking, displayName string) BookingPayload {
	return BookingPayload{
		CourtType:   b.CourtType,
		Date:        b.Date.Format(domain.DateLayout),
		TimeSlot:    b.TimeSlot,
		DisplayName: displayName,
	}
}
