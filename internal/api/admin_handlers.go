package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bookflow/internal/db"
	apperrors "bookflow/internal/errors"
	"bookflow/internal/repository"
	"bookflow/internal/service"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Availability *service.AvailabilityService
	Bookings     *repository.BookingRepository
}

func NewAdminHandler(availability *service.AvailabilityService, bookings *repository.BookingRepository) *AdminHandler {
	return &AdminHandler{Availability: availability, Bookings: bookings}
}

func (h *AdminHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Availability.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if rules == nil {
		rules = []db.AvailabilityRule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *AdminHandler) SaveRule(w http.ResponseWriter, r *http.Request) {
	var req SaveRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	rule := &db.AvailabilityRule{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Enabled:   req.Enabled,
	}
	if err := h.Availability.SaveRule(r.Context(), rule); err != nil {
		if apperrors.IsValidation(err) {
			writeValidation(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Could not save rule")
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *AdminHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := h.Availability.DeleteRule(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "Rule not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Rule deleted"})
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	bookings, err := h.Bookings.ListBookings(r.Context(), date, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if bookings == nil {
		bookings = []db.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *AdminHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.Bookings.CancelBooking(r.Context(), code); err != nil {
		writeError(w, http.StatusNotFound, "Could not cancel booking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}
