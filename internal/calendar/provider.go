package calendar

import (
	"context"
	"log"
	"sync"
	"time"

	apperrors "bookflow/internal/errors"
)

// ConnectionState tracks the external calendar link:
// disconnected -> connecting -> connected | failed. failed is retryable.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// BusyInterval is one busy range reported by the external calendar.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// eventSource abstracts the upstream calendar API so the provider state
// machine and date collapsing are testable without network access.
type eventSource interface {
	ListBusyIntervals(ctx context.Context, from, to time.Time) ([]BusyInterval, error)
}

// BusyIntervalProvider is what the booking service depends on. Sync refreshes
// the blocked-date cache for the given horizon; BlockedDates returns the
// result of the last successful sync.
type BusyIntervalProvider interface {
	Sync(ctx context.Context, from, to time.Time) (map[string]bool, error)
	BlockedDates() map[string]bool
	State() ConnectionState
}

// Provider wraps an event source with the cache and state machine. Any event
// touching a date blacks out that whole date; a failed sync empties the cache
// so availability fails open rather than closed. Blocked dates are keyed in
// loc, the timezone the booking schedule runs in.
type Provider struct {
	source  eventSource
	timeout time.Duration
	loc     *time.Location

	mu      sync.Mutex
	state   ConnectionState
	blocked map[string]bool
}

func NewProvider(source eventSource, timeout time.Duration, loc *time.Location) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Provider{
		source:  source,
		timeout: timeout,
		loc:     loc,
		state:   StateDisconnected,
		blocked: map[string]bool{},
	}
}

func (p *Provider) State() ConnectionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Provider) BlockedDates() map[string]bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]bool, len(p.blocked))
	for k, v := range p.blocked {
		out[k] = v
	}
	return out
}

func (p *Provider) Sync(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	p.mu.Lock()
	p.state = StateConnecting
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	intervals, err := p.source.ListBusyIntervals(ctx, from, to)
	if err != nil {
		log.Printf("Calendar sync failed, continuing without external blocking: %v", err)
		p.mu.Lock()
		p.state = StateFailed
		p.blocked = map[string]bool{}
		p.mu.Unlock()
		return map[string]bool{}, &apperrors.ProviderUnavailableError{Cause: err}
	}

	blocked := CollapseToDates(intervals, from, to, p.loc)

	p.mu.Lock()
	p.state = StateConnected
	p.blocked = blocked
	p.mu.Unlock()

	out := make(map[string]bool, len(blocked))
	for k, v := range blocked {
		out[k] = v
	}
	return out, nil
}

// CollapseToDates reduces busy intervals to a set of fully blocked calendar
// dates within [from, to]. A timed event contributes every date it touches;
// all-day events use an exclusive end date. Timed events are converted into
// loc first, so an event near midnight in another offset blocks the dates it
// actually covers in the booking timezone. All-day events are plain dates and
// are taken as-is.
func CollapseToDates(intervals []BusyInterval, from, to time.Time, loc *time.Location) map[string]bool {
	if loc == nil {
		loc = time.UTC
	}
	blocked := map[string]bool{}
	horizonStart := truncateToDay(from.In(loc))
	horizonEnd := truncateToDay(to.In(loc))

	for _, iv := range intervals {
		if !iv.End.After(iv.Start) && !iv.AllDay {
			continue
		}
		ivStart, ivEnd := iv.Start, iv.End
		if iv.AllDay {
			// All-day events carry a plain date; re-anchor it in loc
			// without shifting the wall date.
			ivStart = rebaseDay(ivStart, loc)
			ivEnd = rebaseDay(ivEnd, loc)
		} else {
			ivStart = ivStart.In(loc)
			ivEnd = ivEnd.In(loc)
		}
		start := truncateToDay(ivStart)
		end := truncateToDay(ivEnd)
		if iv.AllDay {
			// All-day events report an exclusive end date.
			end = end.AddDate(0, 0, -1)
		} else if ivEnd.Equal(end) {
			// A timed event ending exactly at midnight does not touch the
			// next day.
			end = end.AddDate(0, 0, -1)
		}
		if end.Before(start) {
			end = start
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Before(horizonStart) || d.After(horizonEnd) {
				continue
			}
			blocked[d.Format("2006-01-02")] = true
		}
	}
	return blocked
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func rebaseDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
