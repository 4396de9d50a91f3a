package dto

import (
	"errors"
	"testing"

	apperrors "github.com/courtline/court-booking/pkg/util/errorutil"
)

func TestValidateBookRequest(t *testing.T) {
	v := NewValidator()

	valid := BookRequest{UserID: 42, FirstName: "Anna", CourtType: "Hard", Date: "2025-03-10", TimeSlot: "18:00-19:00"}
	if err := v.Validate(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*BookRequest)
		field  string
	}{
		{"missing user", func(r *BookRequest) { r.UserID = 0 }, "user_id"},
		{"negative user", func(r *BookRequest) { r.UserID = -5 }, "user_id"},
		{"unknown court", func(r *BookRequest) { r.CourtType = "grass" }, "court_type"},
		{"bad date", func(r *BookRequest) { r.Date = "10/03/2025" }, "date"},
		{"slot outside catalog", func(r *BookRequest) { r.TimeSlot = "00:00-01:00" }, "time_slot"},
		{"missing slot", func(r *BookRequest) { r.TimeSlot = "" }, "time_slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.Validate(req)
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
			if _, ok := apperrors.ToDomainError(err).Details[tt.field]; !ok {
				t.Fatalf("details %v missing %q", apperrors.ToDomainError(err).Details, tt.field)
			}
		})
	}
}

func TestValidateIdentityRequest(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(IdentityRequest{UserID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(IdentityRequest{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}
