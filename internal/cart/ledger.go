// Package cart holds a visitor's product cart.
package cart

import (
	"context"
	"math"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
)

// Ledger is the product cart. Total and ItemCount are always derived from
// the items; only the items are persisted. Not safe for concurrent use.
type Ledger struct {
	bridge *snapshot.Bridge
	items  []domain.CartItem
}

// Load hydrates a ledger from the visitor's snapshot. A missing or corrupt
// snapshot yields an empty cart.
func Load(ctx context.Context, bridge *snapshot.Bridge) *Ledger {
	l := &Ledger{bridge: bridge}

	var stored []domain.CartItem
	if bridge.Load(ctx, snapshot.KeyCart, &stored) {
		for _, it := range stored {
			if it.ID == "" || it.Quantity <= 0 || l.find(it.ID) >= 0 {
				continue
			}
			l.items = append(l.items, it)
		}
	}
	return l
}

// AddToCart increments the line for item.ID by quantity, or inserts it.
// A non-positive quantity counts as 1.
func (l *Ledger) AddToCart(ctx context.Context, item domain.CartItem, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	if i := l.find(item.ID); i >= 0 {
		l.items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		l.items = append(l.items, item)
	}
	l.persist(ctx)
}

func (l *Ledger) RemoveFromCart(ctx context.Context, id string) {
	i := l.find(id)
	if i < 0 {
		return
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.persist(ctx)
}

// UpdateQuantity sets the line quantity, clamped at zero. Zero removes the line.
func (l *Ledger) UpdateQuantity(ctx context.Context, id string, quantity int) {
	i := l.find(id)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		l.items = append(l.items[:i], l.items[i+1:]...)
	} else {
		l.items[i].Quantity = quantity
	}
	l.persist(ctx)
}

// ClearCart empties the cart and drops its snapshot.
func (l *Ledger) ClearCart(ctx context.Context) {
	l.items = nil
	l.bridge.Remove(ctx, snapshot.KeyCart)
}

// Clear satisfies checkout.Source.
func (l *Ledger) Clear(ctx context.Context) {
	l.ClearCart(ctx)
}

func (l *Ledger) Empty() bool {
	return len(l.items) == 0
}

func (l *Ledger) State() domain.CartState {
	items := make([]domain.CartItem, len(l.items))
	copy(items, l.items)
	return domain.CartState{
		Items:     items,
		Total:     total(items),
		ItemCount: itemCount(items),
	}
}

// Draft converts the cart into order lines.
func (l *Ledger) Draft() domain.OrderDraft {
	lines := make([]domain.OrderLine, 0, len(l.items))
	for _, it := range l.items {
		lines = append(lines, domain.OrderLine{
			ItemID:    it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  roundCents(it.Subtotal()),
		})
	}
	return domain.OrderDraft{Lines: lines, Total: total(l.items)}
}

func (l *Ledger) find(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) persist(ctx context.Context) {
	items := l.items
	if items == nil {
		items = []domain.CartItem{}
	}
	l.bridge.Save(ctx, snapshot.KeyCart, items)
}

func total(items []domain.CartItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return roundCents(sum)
}

func itemCount(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
