package service

import (
	"testing"
	"time"

	"bookflow/internal/db"
)

func mondayRule(start, end string) db.AvailabilityRule {
	return db.AvailabilityRule{ID: 1, DayOfWeek: 1, StartTime: start, EndTime: end, Enabled: true}
}

func TestResolveSlots_Granularity(t *testing.T) {
	// 2024-06-10 is a Monday.
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	slots := ResolveSlots(date, now, []db.AvailabilityRule{mondayRule("09:00", "11:00")}, nil, nil, 30)

	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i, w := range want {
		if slots[i].Time != w {
			t.Errorf("slot %d: expected %s, got %s", i, w, slots[i].Time)
		}
		if !slots[i].Available {
			t.Errorf("slot %s: expected available", w)
		}
	}
}

func TestResolveSlots_Deterministic(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rules := []db.AvailabilityRule{mondayRule("09:00", "12:00")}
	bookings := []db.Booking{{BookingTime: "10:30", Status: db.BookingStatusConfirmed}}

	first := ResolveSlots(date, now, rules, bookings, nil, 30)
	for i := 0; i < 10; i++ {
		again := ResolveSlots(date, now, rules, bookings, nil, 30)
		if len(again) != len(first) {
			t.Fatalf("run %d: slot count changed from %d to %d", i, len(first), len(again))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d: slot %d changed from %+v to %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestResolveSlots_PastDate(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 11, 8, 0, 0, 0, time.UTC)

	slots := ResolveSlots(date, now, []db.AvailabilityRule{mondayRule("09:00", "17:00")}, nil, nil, 30)
	if len(slots) != 0 {
		t.Fatalf("expected no slots for a past date, got %d", len(slots))
	}
}

func TestResolveSlots_TodayIsNotPast(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)

	slots := ResolveSlots(date, now, []db.AvailabilityRule{mondayRule("09:00", "10:00")}, nil, nil, 30)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots for today, got %d", len(slots))
	}
}

func TestResolveSlots_BlockedDate(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	blocked := map[string]bool{"2024-06-10": true}

	slots := ResolveSlots(date, now, []db.AvailabilityRule{mondayRule("09:00", "17:00")}, nil, blocked, 30)
	if len(slots) != 0 {
		t.Fatalf("expected no slots on an externally blocked date, got %d", len(slots))
	}
}

func TestResolveSlots_DisabledDay(t *testing.T) {
	// 2024-06-09 is a Sunday.
	date := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rules := []db.AvailabilityRule{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", Enabled: false},
	}

	slots := ResolveSlots(date, now, rules, nil, nil, 30)
	if len(slots) != 0 {
		t.Fatalf("expected no slots when the day's rule is disabled, got %d", len(slots))
	}
}

func TestResolveSlots_NoRuleForDay(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rules := []db.AvailabilityRule{
		{ID: 1, DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", Enabled: true},
	}

	slots := ResolveSlots(date, now, rules, nil, nil, 30)
	if len(slots) != 0 {
		t.Fatalf("expected no slots without a rule for the weekday, got %d", len(slots))
	}
}

func TestResolveSlots_BookedSlotMarked(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	bookings := []db.Booking{
		{BookingTime: "10:00", Status: db.BookingStatusConfirmed},
		{BookingTime: "09:30", Status: db.BookingStatusCancelled},
	}

	slots := ResolveSlots(date, now, []db.AvailabilityRule{mondayRule("09:00", "11:00")}, bookings, nil, 30)
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		switch slot.Time {
		case "10:00":
			if slot.Available {
				t.Error("slot 10:00 should be unavailable (confirmed booking)")
			}
		default:
			// Cancelled bookings never block a slot.
			if !slot.Available {
				t.Errorf("slot %s should be available", slot.Time)
			}
		}
	}
}

func TestResolveSlots_WindowShorterThanGranularity(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	slots := ResolveSlots(date, now, []db.AvailabilityRule{mondayRule("09:00", "09:15")}, nil, nil, 30)
	if len(slots) != 0 {
		t.Fatalf("expected no slots when no slot fits the window, got %d", len(slots))
	}
}

func TestResolveSlots_OverlappingRulesUnioned(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rules := []db.AvailabilityRule{
		{ID: 1, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30", Enabled: true},
		{ID: 2, DayOfWeek: 1, StartTime: "10:00", EndTime: "11:30", Enabled: true},
	}

	slots := ResolveSlots(date, now, rules, nil, nil, 30)
	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d unioned slots, got %d", len(want), len(slots))
	}
	for i, w := range want {
		if slots[i].Time != w {
			t.Errorf("slot %d: expected %s, got %s", i, w, slots[i].Time)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(570); got != "09:30" {
		t.Errorf("FormatClock(570) = %s, want 09:30", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) = %s, want 00:00", got)
	}
}
