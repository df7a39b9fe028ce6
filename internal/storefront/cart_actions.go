package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/marte1309/PinkBlueberrySalon/internal/catalog"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

func (s *Service) Cart(ctx context.Context, visitorID string) domain.CartState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	return v.Cart.State()
}

// AddToCart adds a catalog product. Name and price always come from the
// catalog.
func (s *Service) AddToCart(ctx context.Context, visitorID, productID string, quantity int) (domain.CartState, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartState{}, catalogErr(err)
	}
	if !p.InStock {
		return domain.CartState{}, ErrOutOfStock
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Cart.AddToCart(ctx, p.CartItem(), quantity)
	return v.Cart.State(), nil
}

func (s *Service) UpdateCartQuantity(ctx context.Context, visitorID, productID string, quantity int) domain.CartState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Cart.UpdateQuantity(ctx, productID, quantity)
	return v.Cart.State()
}

func (s *Service) RemoveFromCart(ctx context.Context, visitorID, productID string) domain.CartState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Cart.RemoveFromCart(ctx, productID)
	return v.Cart.State()
}

func (s *Service) ClearCart(ctx context.Context, visitorID string) domain.CartState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Cart.ClearCart(ctx)
	return v.Cart.State()
}

func catalogErr(err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrUnknownItem, err)
	}
	return err
}
