package http

import (
	"context"
	"net/http"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type OrdersService interface {
	Orders(ctx context.Context, visitorID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	svc     OrdersService
	timeout time.Duration
}

func NewOrdersHandler(svc OrdersService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{svc: svc, timeout: timeout}
}

type ListOrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
	Count  int             `json:"count"`
}

// ListOrders handles GET /api/v1/orders. Only signed-in visitors have an
// order history.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.svc.Orders(ctx, getVisitorID(ctx))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, ListOrdersResponse{Orders: orders, Count: len(orders)})
}
