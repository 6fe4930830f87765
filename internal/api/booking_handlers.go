package api

import (
	"context"
	"encoding/json"
	"net/http"

	"bookflow/internal/db"
	"bookflow/internal/entities"
	apperrors "bookflow/internal/errors"
	"bookflow/internal/service"

	"github.com/gorilla/mux"
)

// BookingDirectory covers lookup and cancellation of existing bookings,
// keyed by booking code plus the owner's email.
type BookingDirectory interface {
	GetByCode(ctx context.Context, code, email string) (*db.Booking, error)
	CancelBooking(ctx context.Context, code string) error
}

type BookingHandler struct {
	Service   *service.BookingService
	Directory BookingDirectory
}

func NewBookingHandler(svc *service.BookingService, directory BookingDirectory) *BookingHandler {
	return &BookingHandler{Service: svc, Directory: directory}
}

func (h *BookingHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	slots, err := h.Service.GetAvailableSlots(r.Context(), date)
	if err != nil {
		if apperrors.IsValidation(err) {
			writeValidation(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Error resolving availability, please try again")
		return
	}
	if slots == nil {
		slots = []entities.Slot{}
	}
	writeJSON(w, http.StatusOK, entities.SlotsResponse{Date: date, Slots: slots})
}

func (h *BookingHandler) IsDateSelectable(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	selectable, err := h.Service.IsDateSelectable(r.Context(), date)
	if err != nil {
		if apperrors.IsValidation(err) {
			writeValidation(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Error checking date, please try again")
		return
	}
	writeJSON(w, http.StatusOK, entities.DateSelectableResponse{Date: date, Selectable: selectable})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	confirmation, err := h.Service.ConfirmBooking(r.Context(), req)
	if err != nil {
		switch {
		case apperrors.IsValidation(err):
			writeValidation(w, err)
		case apperrors.IsConflict(err):
			writeJSON(w, http.StatusConflict, ConflictResponse{
				Error:      "That slot was just taken. Please pick another time.",
				Regenerate: true,
			})
		default:
			writeError(w, http.StatusInternalServerError, "Could not confirm booking, please try again")
		}
		return
	}

	writeJSON(w, http.StatusCreated, confirmation)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	booking, err := h.Directory.GetByCode(r.Context(), code, email)
	if err != nil {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	writeJSON(w, http.StatusOK, entities.BookingResponse{
		Code:         booking.Code,
		Date:         booking.BookingDate.Format("2006-01-02"),
		Time:         booking.BookingTime,
		DurationMins: booking.DurationMins,
		UserName:     booking.UserName,
		UserEmail:    booking.UserEmail,
		UserPhone:    booking.UserPhone,
		Notes:        booking.Notes,
		Status:       booking.Status,
	})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.Directory.CancelBooking(r.Context(), code); err != nil {
		writeError(w, http.StatusNotFound, "Could not cancel booking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

func (h *BookingHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	status := h.Service.SyncExternalCalendar(r.Context())
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ErrorResponse{Error: message})
}

func writeValidation(w http.ResponseWriter, err error) {
	fields := map[string]string{}
	if ve, ok := err.(*apperrors.ValidationError); ok {
		fields = ve.Fields
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid booking request", Fields: fields})
}
