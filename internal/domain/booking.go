package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// CourtType enumerates the bookable court surfaces.
type CourtType string

const (
	CourtTypeRubber CourtType = "rubber"
	CourtTypeHard   CourtType = "hard"
)

// CourtTypes lists every court in presentation order.
var CourtTypes = []CourtType{CourtTypeRubber, CourtTypeHard}

// Valid reports whether the court type is known.
func (c CourtType) Valid() bool {
	switch c {
	case CourtTypeRubber, CourtTypeHard:
		return true
	}
	return false
}

// ParseCourtType normalizes and validates a court type string.
func ParseCourtType(s string) (CourtType, error) {
	ct := CourtType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.Valid() {
		return "", fmt.Errorf("unknown court type %q", s)
	}
	return ct, nil
}

// ParseDate parses a calendar date, returning midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateOf truncates t to its calendar date in t's location, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Booking is a reservation of one slot by one user.
type Booking struct {
	ID        int64
	UserID    int64
	CourtType CourtType
	Date      time.Time
	TimeSlot  string
	CreatedAt time.Time
}

// SlotBooking is a booking joined with the owner's display name.
type SlotBooking struct {
	Booking
	BookedBy string
}

// SlotView describes one (court, date, slot) cell of the availability grid.
type SlotView struct {
	CourtType   CourtType
	Date        time.Time
	TimeSlot    string
	IsAvailable bool
	BookedBy    *string
	BookingID   *int64
}
