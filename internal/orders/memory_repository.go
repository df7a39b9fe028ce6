package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

// MemoryRepository is the order book used when no Postgres is configured.
// It keeps the same outbox semantics as Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
	outbox []*memoryEvent
	nextID int64
	now    func() time.Time
}

type memoryEvent struct {
	OutboxEvent
	processed bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[uuid.UUID]*domain.Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Submit(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	order, err := newOrder(req, m.now())
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(placedEvent(order))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders[order.ID] = order
	m.nextID++
	m.outbox = append(m.outbox, &memoryEvent{OutboxEvent: OutboxEvent{
		ID:          m.nextID,
		AggregateID: order.VisitorID,
		EventType:   EventOrderPlaced,
		Payload:     payload,
		CreatedAt:   order.CreatedAt,
	}})
	return copyOrder(order), nil
}

func (m *MemoryRepository) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (m *MemoryRepository) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*domain.Order{}
	for _, o := range m.orders {
		if userID != "" && o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []*OutboxEvent
	for _, e := range m.outbox {
		if len(events) >= limit {
			break
		}
		if !e.processed {
			ev := e.OutboxEvent
			events = append(events, &ev)
		}
	}
	return events, nil
}

func (m *MemoryRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.outbox {
		if e.ID == id {
			e.processed = true
			return nil
		}
	}
	return fmt.Errorf("outbox event %d not found", id)
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	if o.Shipping != nil {
		s := *o.Shipping
		c.Shipping = &s
	}
	if o.Appointment != nil {
		a := *o.Appointment
		c.Appointment = &a
	}
	return &c
}
