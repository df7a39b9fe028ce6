package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type BookingService interface {
	Booking(ctx context.Context, visitorID string) domain.BookingState
	AddService(ctx context.Context, visitorID, serviceID string) (domain.BookingState, error)
	RemoveService(ctx context.Context, visitorID, serviceID string) domain.BookingState
	SelectStylist(ctx context.Context, visitorID, stylistID string) (domain.BookingState, error)
	SelectDateTime(ctx context.Context, visitorID, date, slot string) (domain.BookingState, error)
	UpdateNotes(ctx context.Context, visitorID, notes string) domain.BookingState
	ClearBooking(ctx context.Context, visitorID string) domain.BookingState
}

type BookingHandler struct {
	svc      BookingService
	validate *validator.Validate
	timeout  time.Duration
}

func NewBookingHandler(svc BookingService, v *validator.Validate, timeout time.Duration) *BookingHandler {
	return &BookingHandler{svc: svc, validate: v, timeout: timeout}
}

type AddServiceRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
}

type SelectStylistRequest struct {
	StylistID string `json:"stylist_id" validate:"required"`
}

type SelectDateTimeRequest struct {
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}

type NotesRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

// GetBooking handles GET /api/v1/booking
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Booking(r.Context(), getVisitorID(r.Context())))
}

// AddService handles POST /api/v1/booking/services
func (h *BookingHandler) AddService(w http.ResponseWriter, r *http.Request) {
	var req AddServiceRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	booking, err := h.svc.AddService(ctx, getVisitorID(ctx), req.ServiceID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// RemoveService handles DELETE /api/v1/booking/services/{id}
func (h *BookingHandler) RemoveService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.RemoveService(ctx, getVisitorID(ctx), chi.URLParam(r, "id")))
}

// SelectStylist handles PUT /api/v1/booking/stylist
func (h *BookingHandler) SelectStylist(w http.ResponseWriter, r *http.Request) {
	var req SelectStylistRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	booking, err := h.svc.SelectStylist(ctx, getVisitorID(ctx), req.StylistID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// SelectDateTime handles PUT /api/v1/booking/datetime
func (h *BookingHandler) SelectDateTime(w http.ResponseWriter, r *http.Request) {
	var req SelectDateTimeRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx := r.Context()
	booking, err := h.svc.SelectDateTime(ctx, getVisitorID(ctx), req.Date, req.Time)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// UpdateNotes handles PUT /api/v1/booking/notes
func (h *BookingHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.UpdateNotes(ctx, getVisitorID(ctx), req.Notes))
}

// ClearBooking handles DELETE /api/v1/booking
func (h *BookingHandler) ClearBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.ClearBooking(ctx, getVisitorID(ctx)))
}
