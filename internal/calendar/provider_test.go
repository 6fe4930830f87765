package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "bookflow/internal/errors"
)

type fakeSource struct {
	intervals []BusyInterval
	err       error
	delay     time.Duration
}

func (f *fakeSource) ListBusyIntervals(ctx context.Context, from, to time.Time) ([]BusyInterval, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.intervals, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProvider_SyncCollapsesDates(t *testing.T) {
	source := &fakeSource{intervals: []BusyInterval{
		// A 15-minute meeting still blacks out the whole date.
		{Start: time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 10, 14, 15, 0, 0, time.UTC)},
		// A multi-day event blocks each date it touches.
		{Start: time.Date(2024, 6, 12, 18, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)},
	}}
	p := NewProvider(source, time.Second, time.UTC)

	blocked, err := p.Sync(context.Background(), day(2024, 6, 1), day(2024, 8, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2024-06-10", "2024-06-12", "2024-06-13", "2024-06-14"}
	if len(blocked) != len(want) {
		t.Fatalf("expected %d blocked dates, got %d: %v", len(want), len(blocked), blocked)
	}
	for _, w := range want {
		if !blocked[w] {
			t.Errorf("expected %s blocked", w)
		}
	}
	if p.State() != StateConnected {
		t.Errorf("expected state connected, got %s", p.State())
	}
}

func TestProvider_SyncFailure(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("auth expired")}
	p := NewProvider(source, time.Second, time.UTC)

	blocked, err := p.Sync(context.Background(), day(2024, 6, 1), day(2024, 8, 30))
	if err == nil {
		t.Fatal("expected an error")
	}
	var pue *apperrors.ProviderUnavailableError
	if !errors.As(err, &pue) {
		t.Fatalf("expected ProviderUnavailableError, got %T", err)
	}
	if len(blocked) != 0 {
		t.Errorf("expected empty blocked set on failure, got %v", blocked)
	}
	if p.State() != StateFailed {
		t.Errorf("expected state failed, got %s", p.State())
	}
	if len(p.BlockedDates()) != 0 {
		t.Error("a failed sync must empty the cache (fail-open)")
	}
}

func TestProvider_Timeout(t *testing.T) {
	source := &fakeSource{delay: 200 * time.Millisecond}
	p := NewProvider(source, 10*time.Millisecond, time.UTC)

	_, err := p.Sync(context.Background(), day(2024, 6, 1), day(2024, 8, 30))
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if p.State() != StateFailed {
		t.Errorf("expected state failed after timeout, got %s", p.State())
	}
}

func TestProvider_RetryAfterFailure(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("network down")}
	p := NewProvider(source, time.Second, time.UTC)

	if _, err := p.Sync(context.Background(), day(2024, 6, 1), day(2024, 8, 30)); err == nil {
		t.Fatal("expected first sync to fail")
	}

	source.err = nil
	source.intervals = []BusyInterval{
		{Start: time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)},
	}
	blocked, err := p.Sync(context.Background(), day(2024, 6, 1), day(2024, 8, 30))
	if err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if !blocked["2024-06-20"] {
		t.Error("expected 2024-06-20 blocked after successful retry")
	}
	if p.State() != StateConnected {
		t.Errorf("expected state connected after retry, got %s", p.State())
	}
}

func TestCollapseToDates_AllDayExclusiveEnd(t *testing.T) {
	// Google all-day events use an exclusive end date: a one-day event on
	// June 10 arrives as start=06-10, end=06-11.
	intervals := []BusyInterval{
		{Start: day(2024, 6, 10), End: day(2024, 6, 11), AllDay: true},
	}
	blocked := CollapseToDates(intervals, day(2024, 6, 1), day(2024, 8, 30), time.UTC)
	if len(blocked) != 1 || !blocked["2024-06-10"] {
		t.Fatalf("expected only 2024-06-10 blocked, got %v", blocked)
	}
}

func TestCollapseToDates_MidnightEndDoesNotLeak(t *testing.T) {
	intervals := []BusyInterval{
		{Start: time.Date(2024, 6, 10, 22, 0, 0, 0, time.UTC), End: day(2024, 6, 11)},
	}
	blocked := CollapseToDates(intervals, day(2024, 6, 1), day(2024, 8, 30), time.UTC)
	if len(blocked) != 1 || !blocked["2024-06-10"] {
		t.Fatalf("an event ending at midnight must not block the next day, got %v", blocked)
	}
}

func TestCollapseToDates_EventOffsetConvertedToBookingZone(t *testing.T) {
	// An event reported in UTC that falls just before midnight lands on the
	// next calendar date in a UTC+2 booking zone, and must block that date.
	loc := time.FixedZone("UTC+2", 2*60*60)
	intervals := []BusyInterval{
		{Start: time.Date(2024, 6, 10, 23, 30, 0, 0, time.UTC), End: time.Date(2024, 6, 11, 0, 30, 0, 0, time.UTC)},
	}
	blocked := CollapseToDates(intervals, day(2024, 6, 1), day(2024, 8, 30), loc)
	if len(blocked) != 1 || !blocked["2024-06-11"] {
		t.Fatalf("expected only 2024-06-11 blocked in UTC+2, got %v", blocked)
	}
}

func TestCollapseToDates_AllDayDateKeptAcrossZones(t *testing.T) {
	// A one-day all-day event is a plain date; it must block that wall date
	// in any booking zone instead of shifting by the zone offset.
	loc := time.FixedZone("UTC-5", -5*60*60)
	intervals := []BusyInterval{
		{Start: day(2024, 6, 10), End: day(2024, 6, 11), AllDay: true},
	}
	blocked := CollapseToDates(intervals, day(2024, 6, 1), day(2024, 8, 30), loc)
	if len(blocked) != 1 || !blocked["2024-06-10"] {
		t.Fatalf("expected only 2024-06-10 blocked, got %v", blocked)
	}
}

func TestCollapseToDates_OutsideHorizonIgnored(t *testing.T) {
	intervals := []BusyInterval{
		{Start: day(2024, 5, 20), End: day(2024, 5, 20).Add(time.Hour)},
		{Start: day(2024, 9, 20), End: day(2024, 9, 20).Add(time.Hour)},
	}
	blocked := CollapseToDates(intervals, day(2024, 6, 1), day(2024, 8, 30), time.UTC)
	if len(blocked) != 0 {
		t.Fatalf("expected no blocked dates outside the horizon, got %v", blocked)
	}
}

func TestNoopProvider(t *testing.T) {
	p := NewNoopProvider()
	blocked, err := p.Sync(context.Background(), day(2024, 6, 1), day(2024, 8, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocked) != 0 {
		t.Errorf("noop provider must not block dates, got %v", blocked)
	}
	if p.State() != StateDisconnected {
		t.Errorf("expected disconnected, got %s", p.State())
	}
}
