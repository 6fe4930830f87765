package db

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// AvailabilityRule is a recurring weekly open window. Times are wall-clock
// "HH:MM" strings in the configured booking timezone.
type AvailabilityRule struct {
	ID        int
	DayOfWeek int // 0=Sunday .. 6=Saturday
	StartTime string
	EndTime   string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Booking struct {
	ID           int
	Code         string
	BookingDate  time.Time // date only, midnight in the booking timezone
	BookingTime  string    // "HH:MM", start of the reserved slot
	DurationMins int
	UserName     string
	UserEmail    string
	UserPhone    string
	Notes        string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
