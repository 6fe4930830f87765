package calendar

import (
	"context"
	"time"
)

// NoopProvider is used when no external calendar is connected. It never
// blocks any date and always reports disconnected.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

func (p *NoopProvider) Sync(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (p *NoopProvider) BlockedDates() map[string]bool {
	return map[string]bool{}
}

func (p *NoopProvider) State() ConnectionState {
	return StateDisconnected
}
