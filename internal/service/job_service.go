package service

import (
	"context"
	"fmt"
	"log"

	"bookflow/internal/db"
	"bookflow/internal/repository"
)

type JobService struct {
	Repo    *repository.JobRepository
	Booking *BookingService
}

func NewJobService(repo *repository.JobRepository, booking *BookingService) *JobService {
	return &JobService{Repo: repo, Booking: booking}
}

// CompletePastBookings marks confirmed bookings whose date has passed as
// completed so they drop out of conflict checks and admin views of upcoming
// work.
func (s *JobService) CompletePastBookings() error {
	log.Println("Cron Job: Checking for bookings to mark as 'completed'...")

	bookingIDs, err := s.Repo.GetConfirmedBookingIDsPastDate()
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed bookings past date: %w", err)
	}

	if len(bookingIDs) == 0 {
		log.Println("Cron Job: No confirmed bookings found past their date.")
		return nil
	}

	log.Printf("Cron Job: Found %d bookings to mark as 'completed'. IDs: %v", len(bookingIDs), bookingIDs)

	err = s.Repo.UpdateBookingStatuses(bookingIDs, db.BookingStatusCompleted)
	if err != nil {
		return fmt.Errorf("cron job: failed to update booking statuses: %w", err)
	}

	log.Printf("Cron Job: Successfully updated %d bookings to 'completed'.", len(bookingIDs))
	return nil
}

// RefreshExternalCalendar re-syncs the blocked-date cache. Failures are
// already absorbed by the sync itself; this only logs the outcome.
func (s *JobService) RefreshExternalCalendar(ctx context.Context) {
	status := s.Booking.SyncExternalCalendar(ctx)
	if status.Connected {
		log.Printf("Cron Job: calendar re-sync ok, %d blocked dates", status.BlockedDateCount)
	} else {
		log.Println("Cron Job: calendar re-sync failed, continuing without external blocking")
	}
}
