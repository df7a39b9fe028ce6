package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type CartService interface {
	Cart(ctx context.Context, visitorID string) domain.CartState
	AddToCart(ctx context.Context, visitorID, productID string, quantity int) (domain.CartState, error)
	UpdateCartQuantity(ctx context.Context, visitorID, productID string, quantity int) domain.CartState
	RemoveFromCart(ctx context.Context, visitorID, productID string) domain.CartState
	ClearCart(ctx context.Context, visitorID string) domain.CartState
}

type CartHandler struct {
	svc      CartService
	validate *validator.Validate
	timeout  time.Duration
}

func NewCartHandler(svc CartService, v *validator.Validate, timeout time.Duration) *CartHandler {
	return &CartHandler{svc: svc, validate: v, timeout: timeout}
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Cart(r.Context(), getVisitorID(r.Context())))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.svc.AddToCart(ctx, getVisitorID(ctx), req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/v1/cart/items/{id}. A quantity of zero or
// less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.UpdateCartQuantity(ctx, getVisitorID(ctx), chi.URLParam(r, "id"), req.Quantity))
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.RemoveFromCart(ctx, getVisitorID(ctx), chi.URLParam(r, "id")))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.ClearCart(ctx, getVisitorID(ctx)))
}
