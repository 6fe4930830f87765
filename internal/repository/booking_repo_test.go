package repository

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsSlotConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"confirmed slot violation", &pq.Error{Code: "23505", Constraint: "bookings_confirmed_slot_idx"}, true},
		{"wrapped slot violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "bookings_confirmed_slot_idx"}), true},
		{"code key violation", &pq.Error{Code: "23505", Constraint: "bookings_code_key"}, false},
		{"unique violation without constraint", &pq.Error{Code: "23505"}, false},
		{"other pq error", &pq.Error{Code: "23503", Constraint: "bookings_confirmed_slot_idx"}, false},
		{"plain error", fmt.Errorf("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := isSlotConflict(tc.err); got != tc.want {
			t.Errorf("%s: isSlotConflict = %v, want %v", tc.name, got, tc.want)
		}
	}
}
