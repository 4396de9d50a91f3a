// Package catalog enumerates the fixed set of bookable hourly slots.
package catalog

import (
	"fmt"
	"time"

	"github.com/courtline/court-booking/internal/domain"
)

const (
	firstHour = 6
	lastHour  = 24
)

// Slot is one bookable (court, date, time slot) combination.
type Slot struct {
	CourtType domain.CourtType
	Date      time.Time
	TimeSlot  string
}

var timeSlots = buildTimeSlots()

var slotIndex = func() map[string]struct{} {
	idx := make(map[string]struct{}, len(timeSlots))
	for _, s := range timeSlots {
		idx[s] = struct{}{}
	}
	return idx
}()

func buildTimeSlots() []string {
	slots := make([]string, 0, lastHour-firstHour)
	for hour := firstHour; hour < lastHour; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00-%02d:00", hour, hour+1))
	}
	return slots
}

// TimeSlots returns the 18 hourly intervals from 06:00-07:00 to 23:00-24:00.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// IsValidTimeSlot reports whether s is a catalog member.
func IsValidTimeSlot(s string) bool {
	_, ok := slotIndex[s]
	return ok
}

// EnumerateSlots returns every court × slot pair for date, court-major and in ascending time.
// The set of slots is the same for every date.
func EnumerateSlots(date time.Time) []Slot {
	day := domain.DateOf(date)
	slots := make([]Slot, 0, len(domain.CourtTypes)*len(timeSlots))
	for _, court := range domain.CourtTypes {
		for _, ts := range timeSlots {
			slots = append(slots, Slot{CourtType: court, Date: day, TimeSlot: ts})
		}
	}
	return slots
}
