package orders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRequest(userID string) *domain.OrderRequest {
	return &domain.OrderRequest{
		VisitorID: "visitor-1",
		UserID:    userID,
		Kind:      domain.KindProducts,
		Contact:   domain.PersonalInfo{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Phone: "5551234"},
		Shipping:  &domain.BillingInfo{Address1: "Av. Reforma 1", City: "CDMX", State: "CDMX", PostalCode: "06600", Country: "Mexico"},
		Draft: domain.OrderDraft{
			Lines: []domain.OrderLine{{ItemID: "blueberry-revival-shampoo", Name: "Blueberry Revival Shampoo", Quantity: 3, UnitPrice: 38, Subtotal: 114}},
			Total: 114,
		},
	}
}

func serviceRequest(userID string) *domain.OrderRequest {
	return &domain.OrderRequest{
		VisitorID:           "visitor-2",
		UserID:              userID,
		Kind:                domain.KindServices,
		Contact:             domain.PersonalInfo{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Phone: "5551234"},
		SpecialRequirements: "sensitive scalp",
		Currency:            "MXN",
		Draft: domain.OrderDraft{
			Lines: []domain.OrderLine{{ItemID: "luxury-cut-style", Name: "Luxury Cut & Style", Quantity: 1, UnitPrice: 165, Subtotal: 165}},
			Total: 165,
			Appointment: &domain.AppointmentDetails{
				StylistID: "stylist-1", StylistName: "Alexandra Santos",
				Date: "2026-03-14", Time: "10:30", DurationMinutes: 90,
			},
		},
	}
}

func TestMemorySubmit_StatusByKind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	placed, err := repo.Submit(ctx, productRequest("user-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPlaced, placed.Status)
	assert.Equal(t, domain.DefaultCurrency, placed.Currency)
	assert.Equal(t, 114.0, placed.TotalAmount)

	booked, err := repo.Submit(ctx, serviceRequest("user-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusBooked, booked.Status)
	require.NotNil(t, booked.Appointment)
	assert.Equal(t, "stylist-1", booked.Appointment.StylistID)

	got, err := repo.GetOrder(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, booked, got)
}

func TestMemorySubmit_RejectsEmptyDraft(t *testing.T) {
	repo := NewMemoryRepository()
	req := productRequest("")
	req.Draft = domain.OrderDraft{}

	_, err := repo.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestMemorySubmit_CancelledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Submit(ctx, productRequest(""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryListOrdersByUser_NewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := repo.Submit(ctx, productRequest("user-1"))
	require.NoError(t, err)
	second, err := repo.Submit(ctx, serviceRequest("user-1"))
	require.NoError(t, err)
	_, err = repo.Submit(ctx, productRequest("user-2"))
	require.NoError(t, err)
	_, err = repo.Submit(ctx, productRequest(""))
	require.NoError(t, err)

	list, err := repo.ListOrdersByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	list, err = repo.ListOrdersByUser(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryOutbox(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	order, err := repo.Submit(ctx, serviceRequest("user-1"))
	require.NoError(t, err)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventOrderPlaced, events[0].EventType)
	assert.Equal(t, "visitor-2", events[0].AggregateID)

	var payload PlacedEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, order.ID.String(), payload.OrderID)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, 165.0, payload.TotalAmount)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))
	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.Error(t, repo.MarkEventAsProcessed(ctx, 42))
}
