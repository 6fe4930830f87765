package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"bookflow/internal/calendar"
	"bookflow/internal/db"
	"bookflow/internal/entities"
	apperrors "bookflow/internal/errors"

	"github.com/go-playground/validator/v10"
)

const DefaultSyncHorizonDays = 90

type AvailabilityStore interface {
	RulesForWeekday(ctx context.Context, weekday time.Weekday) ([]db.AvailabilityRule, error)
}

type BookingLedger interface {
	FindConfirmed(ctx context.Context, date string) ([]db.Booking, error)
	InsertIfNoConflict(ctx context.Context, booking *db.Booking) error
}

type ConfirmationSender interface {
	SendBookingConfirmation(booking db.Booking) error
}

type BookingService struct {
	Rules    AvailabilityStore
	Ledger   BookingLedger
	Provider calendar.BusyIntervalProvider
	Sender   ConfirmationSender

	Loc             *time.Location
	SlotMinutes     int
	SyncHorizonDays int

	now      func() time.Time
	validate *validator.Validate
}

func NewBookingService(rules AvailabilityStore, ledger BookingLedger, provider calendar.BusyIntervalProvider, sender ConfirmationSender, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		Rules:           rules,
		Ledger:          ledger,
		Provider:        provider,
		Sender:          sender,
		Loc:             loc,
		SlotMinutes:     DefaultSlotMinutes,
		SyncHorizonDays: DefaultSyncHorizonDays,
		now:             time.Now,
		validate:        validator.New(),
	}
}

func (s *BookingService) today() time.Time {
	return s.now().In(s.Loc)
}

func (s *BookingService) parseDate(dateStr string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, s.Loc)
	if err != nil {
		return time.Time{}, apperrors.NewValidation(map[string]string{"date": "must be a valid YYYY-MM-DD date"})
	}
	return date, nil
}

// GetAvailableSlots resolves the bookable slots for one date from the weekly
// schedule, the confirmed bookings on that date and the last-synced blocked
// dates.
func (s *BookingService) GetAvailableSlots(ctx context.Context, dateStr string) ([]entities.Slot, error) {
	date, err := s.parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	rules, err := s.Rules.RulesForWeekday(ctx, date.Weekday())
	if err != nil {
		return nil, fmt.Errorf("internal error loading weekly schedule: %w", err)
	}

	bookings, err := s.Ledger.FindConfirmed(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("internal error loading bookings: %w", err)
	}

	return ResolveSlots(date, s.today(), rules, bookings, s.Provider.BlockedDates(), s.SlotMinutes), nil
}

// IsDateSelectable combines the past-date, weekly-rule and blocked-date
// checks. Existing bookings do not make a date unselectable; they only mark
// individual slots.
func (s *BookingService) IsDateSelectable(ctx context.Context, dateStr string) (bool, error) {
	date, err := s.parseDate(dateStr)
	if err != nil {
		return false, err
	}

	today := s.today()
	if truncateToDay(date).Before(truncateToDay(today)) {
		return false, nil
	}
	if s.Provider.BlockedDates()[dateStr] {
		return false, nil
	}

	rules, err := s.Rules.RulesForWeekday(ctx, date.Weekday())
	if err != nil {
		return false, fmt.Errorf("internal error loading weekly schedule: %w", err)
	}
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		start, errStart := ParseClock(rule.StartTime)
		end, errEnd := ParseClock(rule.EndTime)
		if errStart != nil || errEnd != nil {
			continue
		}
		if start+s.SlotMinutes <= end {
			return true, nil
		}
	}
	return false, nil
}

// ConfirmBooking is the commit path. Validation failures never reach the
// ledger; the conflict re-check happens inside the atomic insert, so two
// concurrent confirms for the same slot always resolve to one booking and one
// ConflictError. Notification failures are logged and swallowed: the booking
// is already the durable fact.
func (s *BookingService) ConfirmBooking(ctx context.Context, req entities.BookingRequest) (*entities.BookingConfirmation, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	slots, err := s.GetAvailableSlots(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	offered := false
	for _, slot := range slots {
		if slot.Time == req.Time {
			if !slot.Available {
				return nil, apperrors.NewConflict(req.Date, req.Time)
			}
			offered = true
			break
		}
	}
	if !offered {
		return nil, apperrors.NewValidation(map[string]string{"time": "not a bookable slot for this date"})
	}

	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	booking := &db.Booking{
		Code:         fmt.Sprintf("%08X", s.now().UnixNano()%100000000),
		BookingDate:  date,
		BookingTime:  req.Time,
		DurationMins: s.SlotMinutes,
		UserName:     strings.TrimSpace(req.Name),
		UserEmail:    strings.TrimSpace(req.Email),
		UserPhone:    strings.TrimSpace(req.Phone),
		Notes:        req.Notes,
		Status:       db.BookingStatusConfirmed,
	}

	if err := s.Ledger.InsertIfNoConflict(ctx, booking); err != nil {
		return nil, err
	}

	if s.Sender != nil {
		if errNotify := s.Sender.SendBookingConfirmation(*booking); errNotify != nil {
			log.Printf("WARNING: booking %s confirmed but notification failed: %v", booking.Code, errNotify)
		}
	}

	return &entities.BookingConfirmation{
		Code:         booking.Code,
		Date:         req.Date,
		Time:         req.Time,
		DurationMins: booking.DurationMins,
		Status:       booking.Status,
		Message:      "Booking confirmed.",
	}, nil
}

// SyncExternalCalendar refreshes the blocked-date cache for the sync horizon.
// A failed sync is reported, not raised: booking continues with no external
// blocking.
func (s *BookingService) SyncExternalCalendar(ctx context.Context) entities.SyncStatus {
	from := truncateToDay(s.today())
	to := from.AddDate(0, 0, s.SyncHorizonDays)

	blocked, err := s.Provider.Sync(ctx, from, to)
	if err != nil {
		log.Printf("External calendar sync failed: %v", err)
		return entities.SyncStatus{Connected: false, BlockedDateCount: 0}
	}
	return entities.SyncStatus{
		Connected:        s.Provider.State() == calendar.StateConnected,
		BlockedDateCount: len(blocked),
		SyncedAt:         s.now().UTC().Format(time.RFC3339),
	}
}

func (s *BookingService) validateRequest(req entities.BookingRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	fields := map[string]string{}
	if invalid, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range invalid {
			switch fe.Field() {
			case "Date":
				fields["date"] = "must be a valid YYYY-MM-DD date"
			case "Time":
				fields["time"] = "must be a valid HH:MM time"
			case "Name":
				fields["name"] = "is required"
			case "Email":
				fields["email"] = "must be a valid email address"
			case "Phone":
				fields["phone"] = "must be a valid phone number"
			case "Notes":
				fields["notes"] = "is too long"
			}
		}
	}
	if len(fields) == 0 {
		fields["request"] = "is invalid"
	}
	return apperrors.NewValidation(fields)
}
