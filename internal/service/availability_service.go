package service

import (
	"context"
	"time"

	"bookflow/internal/db"
	apperrors "bookflow/internal/errors"
)

type AvailabilityRuleStore interface {
	ListRules(ctx context.Context) ([]db.AvailabilityRule, error)
	UpsertRule(ctx context.Context, rule *db.AvailabilityRule) error
	DeleteRule(ctx context.Context, id int) error
}

// AvailabilityService manages the weekly schedule that feeds slot
// resolution. Rules are written by the owner out-of-band; the booking engine
// only reads them.
type AvailabilityService struct {
	Repo AvailabilityRuleStore
}

func NewAvailabilityService(repo AvailabilityRuleStore) *AvailabilityService {
	return &AvailabilityService{Repo: repo}
}

func (s *AvailabilityService) ListRules(ctx context.Context) ([]db.AvailabilityRule, error) {
	return s.Repo.ListRules(ctx)
}

func (s *AvailabilityService) SaveRule(ctx context.Context, rule *db.AvailabilityRule) error {
	if err := ValidateRule(rule); err != nil {
		return err
	}
	return s.Repo.UpsertRule(ctx, rule)
}

func (s *AvailabilityService) DeleteRule(ctx context.Context, id int) error {
	return s.Repo.DeleteRule(ctx, id)
}

// ValidateRule enforces the write-time invariants: a real weekday, parseable
// wall-clock times and start strictly before end.
func ValidateRule(rule *db.AvailabilityRule) error {
	fields := map[string]string{}

	if rule.DayOfWeek < int(time.Sunday) || rule.DayOfWeek > int(time.Saturday) {
		fields["day_of_week"] = "must be 0 (Sunday) through 6 (Saturday)"
	}

	start, errStart := ParseClock(rule.StartTime)
	if errStart != nil {
		fields["start_time"] = "must be a valid HH:MM time"
	}
	end, errEnd := ParseClock(rule.EndTime)
	if errEnd != nil {
		fields["end_time"] = "must be a valid HH:MM time"
	}
	if errStart == nil && errEnd == nil && start >= end {
		fields["end_time"] = "must be after start_time"
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields)
	}
	return nil
}
