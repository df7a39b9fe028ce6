package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type CustomerService interface {
	Customer(ctx context.Context, visitorID string) domain.CustomerState
	UpdatePreferences(ctx context.Context, visitorID string, patch domain.PreferencesPatch) (domain.CustomerState, error)
	AddToFavorites(ctx context.Context, visitorID, serviceID string) (domain.CustomerState, error)
	RemoveFromFavorites(ctx context.Context, visitorID, serviceID string) domain.CustomerState
}

type CustomerHandler struct {
	svc      CustomerService
	validate *validator.Validate
	timeout  time.Duration
}

func NewCustomerHandler(svc CustomerService, v *validator.Validate, timeout time.Duration) *CustomerHandler {
	return &CustomerHandler{svc: svc, validate: v, timeout: timeout}
}

// GetCustomer handles GET /api/v1/customer
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Customer(r.Context(), getVisitorID(r.Context())))
}

// UpdatePreferences handles PUT /api/v1/customer/preferences. Absent fields
// are left unchanged; an empty preferredStylist clears it.
func (h *CustomerHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req domain.PreferencesPatch
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state, err := h.svc.UpdatePreferences(ctx, getVisitorID(ctx), req)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// AddFavorite handles POST /api/v1/customer/favorites/{id}
func (h *CustomerHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state, err := h.svc.AddToFavorites(ctx, getVisitorID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// RemoveFavorite handles DELETE /api/v1/customer/favorites/{id}
func (h *CustomerHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.RemoveFromFavorites(ctx, getVisitorID(ctx), chi.URLParam(r, "id")))
}
