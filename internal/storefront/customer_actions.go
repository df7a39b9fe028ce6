package storefront

import (
	"context"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

func (s *Service) Customer(ctx context.Context, visitorID string) domain.CustomerState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	return v.Customer.State()
}

// UpdatePreferences merges patch. A preferred stylist must exist in the
// catalog; an empty one clears the preference.
func (s *Service) UpdatePreferences(ctx context.Context, visitorID string, patch domain.PreferencesPatch) (domain.CustomerState, error) {
	if patch.PreferredStylist != nil && *patch.PreferredStylist != "" {
		if _, err := s.catalog.GetStylist(ctx, *patch.PreferredStylist); err != nil {
			return domain.CustomerState{}, catalogErr(err)
		}
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Customer.UpdatePreferences(ctx, patch)
	return v.Customer.State(), nil
}

func (s *Service) AddToFavorites(ctx context.Context, visitorID, serviceID string) (domain.CustomerState, error) {
	if _, err := s.catalog.GetService(ctx, serviceID); err != nil {
		return domain.CustomerState{}, catalogErr(err)
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Customer.AddToFavorites(ctx, serviceID)
	return v.Customer.State(), nil
}

func (s *Service) RemoveFromFavorites(ctx context.Context, visitorID, serviceID string) domain.CustomerState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Customer.RemoveFromFavorites(ctx, serviceID)
	return v.Customer.State()
}

// Orders lists the signed-in user's orders, newest first.
func (s *Service) Orders(ctx context.Context, visitorID string) ([]*domain.Order, error) {
	v, release := s.registry.Acquire(ctx, visitorID)
	authenticated := v.Session.IsAuthenticated()
	userID := v.Session.UserID()
	release()

	if !authenticated {
		return nil, ErrNotAuthenticated
	}
	return s.orders.ListOrdersByUser(ctx, userID)
}
