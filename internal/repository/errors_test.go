package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyInsertError(t *testing.T) {
	other := errors.New("connection refused")
	fkViolation := &pgconn.PgError{Code: "23503", ConstraintName: "bookings_user_id_fkey"}
	unknownUnique := &pgconn.PgError{Code: "23505", ConstraintName: "some_other_key"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"user date", &pgconn.PgError{Code: "23505", ConstraintName: constraintUserDate}, ErrUserDayConflict},
		{"slot", &pgconn.PgError{Code: "23505", ConstraintName: constraintSlot}, ErrSlotConflict},
		{"wrapped slot", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraintSlot}), ErrSlotConflict},
		{"foreign key", fkViolation, fkViolation},
		{"unknown unique", unknownUnique, unknownUnique},
		{"not a pg error", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyInsertError(tt.err); got != tt.want {
				t.Errorf("classifyInsertError() = %v, want %v", got, tt.want)
			}
		})
	}
}
