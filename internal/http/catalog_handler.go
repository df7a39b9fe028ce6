package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type CatalogService interface {
	Products(ctx context.Context, category domain.ProductCategory) ([]domain.Product, error)
	Services(ctx context.Context, category domain.ServiceCategory) ([]domain.Service, error)
	Stylists(ctx context.Context) ([]domain.Stylist, error)
	Stylist(ctx context.Context, id string) (*domain.Stylist, error)
	Availability(ctx context.Context, date string) ([]domain.TimeSlot, error)
}

type CatalogHandler struct {
	svc     CatalogService
	timeout time.Duration
}

func NewCatalogHandler(svc CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{svc: svc, timeout: timeout}
}

type AvailabilityResponse struct {
	Date  string            `json:"date"`
	Slots []domain.TimeSlot `json:"slots"`
}

// ListProducts handles GET /api/v1/products?category=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.svc.Products(ctx, domain.ProductCategory(r.URL.Query().Get("category")))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// ListServices handles GET /api/v1/services?category=
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	services, err := h.svc.Services(ctx, domain.ServiceCategory(r.URL.Query().Get("category")))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

// ListStylists handles GET /api/v1/stylists
func (h *CatalogHandler) ListStylists(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stylists, err := h.svc.Stylists(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, stylists)
}

// GetStylist handles GET /api/v1/stylists/{id}
func (h *CatalogHandler) GetStylist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stylist, err := h.svc.Stylist(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, stylist)
}

// GetAvailability handles GET /api/v1/availability?date=YYYY-MM-DD
func (h *CatalogHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	date := r.URL.Query().Get("date")
	slots, err := h.svc.Availability(ctx, date)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, AvailabilityResponse{Date: date, Slots: slots})
}
