package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookflow/internal/db"
)

type AvailabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(database *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{DB: database}
}

func (r *AvailabilityRepository) ListRules(ctx context.Context) ([]db.AvailabilityRule, error) {
	query := `
	SELECT id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), enabled, created_at, updated_at
	FROM availability_rules
	ORDER BY day_of_week, start_time`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying availability rules: %w", err)
	}
	defer rows.Close()

	var rules []db.AvailabilityRule
	for rows.Next() {
		var rule db.AvailabilityRule
		if err := rows.Scan(&rule.ID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning availability rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating availability rules: %w", err)
	}
	return rules, nil
}

func (r *AvailabilityRepository) RulesForWeekday(ctx context.Context, weekday time.Weekday) ([]db.AvailabilityRule, error) {
	query := `
	SELECT id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), enabled, created_at, updated_at
	FROM availability_rules
	WHERE day_of_week = $1
	ORDER BY start_time`

	rows, err := r.DB.QueryContext(ctx, query, int(weekday))
	if err != nil {
		return nil, fmt.Errorf("error querying rules for weekday %d: %w", weekday, err)
	}
	defer rows.Close()

	var rules []db.AvailabilityRule
	for rows.Next() {
		var rule db.AvailabilityRule
		if err := rows.Scan(&rule.ID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning availability rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating availability rules: %w", err)
	}
	return rules, nil
}

// UpsertRule creates or replaces the rule for (day_of_week, start_time).
func (r *AvailabilityRepository) UpsertRule(ctx context.Context, rule *db.AvailabilityRule) error {
	query := `
	INSERT INTO availability_rules (day_of_week, start_time, end_time, enabled, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (day_of_week, start_time)
	DO UPDATE SET end_time = EXCLUDED.end_time, enabled = EXCLUDED.enabled, updated_at = NOW()
	RETURNING id, created_at, updated_at`

	return r.DB.QueryRowContext(ctx, query,
		rule.DayOfWeek,
		rule.StartTime,
		rule.EndTime,
		rule.Enabled,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *AvailabilityRepository) DeleteRule(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM availability_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting availability rule %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
