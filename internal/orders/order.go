// Package orders records confirmed checkouts and the events they emit.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

// EventOrderPlaced is the outbox event type written with every order.
const EventOrderPlaced = "order.placed"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order has no lines")
)

// Store is the order book the storefront confirms into and the outbox
// publisher drains.
type Store interface {
	Submit(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// PlacedEvent is the payload of an order.placed event.
type PlacedEvent struct {
	OrderID     string           `json:"order_id"`
	VisitorID   string           `json:"visitor_id"`
	UserID      string           `json:"user_id,omitempty"`
	Kind        domain.OrderKind `json:"kind"`
	TotalAmount float64          `json:"total_amount"`
	Currency    string           `json:"currency"`
	PlacedAt    time.Time        `json:"placed_at"`
}

// newOrder builds the order row for a confirmed checkout. Service bookings
// start BOOKED, product orders PLACED.
func newOrder(req *domain.OrderRequest, now time.Time) (*domain.Order, error) {
	if req == nil || req.Draft.Empty() {
		return nil, ErrEmptyOrder
	}

	status := domain.OrderStatusPlaced
	if req.Kind == domain.KindServices {
		status = domain.OrderStatusBooked
	}
	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	return &domain.Order{
		ID:                  uuid.New(),
		VisitorID:           req.VisitorID,
		UserID:              req.UserID,
		Kind:                req.Kind,
		Status:              status,
		Contact:             req.Contact,
		Shipping:            req.Shipping,
		SpecialRequirements: req.SpecialRequirements,
		Payment:             req.Payment,
		Items:               req.Draft.Lines,
		Appointment:         req.Draft.Appointment,
		TotalAmount:         req.Draft.Total,
		Currency:            currency,
		CreatedAt:           now,
	}, nil
}

func placedEvent(o *domain.Order) PlacedEvent {
	return PlacedEvent{
		OrderID:     o.ID.String(),
		VisitorID:   o.VisitorID,
		UserID:      o.UserID,
		Kind:        o.Kind,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		PlacedAt:    o.CreatedAt,
	}
}
