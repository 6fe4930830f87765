package errors

import (
	stderrors "errors"
	"fmt"
)

// ConflictError signals that the requested slot was taken by a concurrent
// booking between offer and confirm. It is an expected outcome, not an
// application failure: callers should regenerate the slot list for the date
// and prompt re-selection.
type ConflictError struct {
	Date string
	Time string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s %s is already booked", e.Date, e.Time)
}

func NewConflict(date, timeOfDay string) *ConflictError {
	return &ConflictError{Date: date, Time: timeOfDay}
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return stderrors.As(err, &ce)
}

// ValidationError carries field-level messages for a rejected booking
// request. It never reaches the ledger.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking request: %d invalid field(s)", len(e.Fields))
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// ProviderUnavailableError marks a failed external calendar sync. Non-fatal:
// availability resolution continues with no externally blocked dates.
type ProviderUnavailableError struct {
	Cause error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("external calendar unavailable: %v", e.Cause)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Cause }

// StoreError wraps a ledger read/write failure unrelated to slot conflicts.
// Fatal to the current attempt, retryable by the user.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }
