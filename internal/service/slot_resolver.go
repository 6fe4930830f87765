package service

import (
	"fmt"
	"sort"
	"time"

	"bookflow/internal/db"
	"bookflow/internal/entities"
)

const DefaultSlotMinutes = 30

// ResolveSlots reconciles the weekly schedule, the confirmed bookings for the
// date and the externally blocked dates into the ordered slot list for one
// date. Pure computation: no I/O, deterministic for identical inputs.
//
// A past date, an externally blocked date or a day without an enabled rule
// yields no slots. Overlapping enabled rules for the same weekday are
// unioned. A slot only exists when it fits entirely inside a rule window
// (start + granularity <= window end). A slot is unavailable when a confirmed
// booking holds its exact start time.
func ResolveSlots(date, now time.Time, rules []db.AvailabilityRule, bookings []db.Booking, blocked map[string]bool, granularityMins int) []entities.Slot {
	if granularityMins <= 0 {
		granularityMins = DefaultSlotMinutes
	}

	day := truncateToDay(date)
	if day.Before(truncateToDay(now)) {
		return nil
	}
	if blocked[day.Format("2006-01-02")] {
		return nil
	}

	starts := map[int]bool{}
	for _, rule := range rules {
		if !rule.Enabled || rule.DayOfWeek != int(day.Weekday()) {
			continue
		}
		start, err := ParseClock(rule.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(rule.EndTime)
		if err != nil || end <= start {
			continue
		}
		for t := start; t+granularityMins <= end; t += granularityMins {
			starts[t] = true
		}
	}
	if len(starts) == 0 {
		return nil
	}

	booked := map[int]bool{}
	for _, b := range bookings {
		if b.Status != db.BookingStatusConfirmed {
			continue
		}
		if t, err := ParseClock(b.BookingTime); err == nil {
			booked[t] = true
		}
	}

	ordered := make([]int, 0, len(starts))
	for t := range starts {
		ordered = append(ordered, t)
	}
	sort.Ints(ordered)

	slots := make([]entities.Slot, 0, len(ordered))
	for _, t := range ordered {
		slots = append(slots, entities.Slot{
			Time:      FormatClock(t),
			Available: !booked[t],
		})
	}
	return slots
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
