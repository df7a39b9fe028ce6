package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/booking"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

const slotFormat = "15:04"

func (s *Service) Booking(ctx context.Context, visitorID string) domain.BookingState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	return v.Booking.State()
}

func (s *Service) AddService(ctx context.Context, visitorID, serviceID string) (domain.BookingState, error) {
	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return domain.BookingState{}, catalogErr(err)
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Booking.AddService(ctx, svc.Selection())
	return v.Booking.State(), nil
}

func (s *Service) RemoveService(ctx context.Context, visitorID, serviceID string) domain.BookingState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Booking.RemoveService(ctx, serviceID)
	return v.Booking.State()
}

func (s *Service) SelectStylist(ctx context.Context, visitorID, stylistID string) (domain.BookingState, error) {
	st, err := s.catalog.GetStylist(ctx, stylistID)
	if err != nil {
		return domain.BookingState{}, catalogErr(err)
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Booking.SelectStylist(ctx, st.Choice())
	return v.Booking.State(), nil
}

// SelectDateTime takes a YYYY-MM-DD date (empty keeps the current one) and
// an HH:MM slot.
func (s *Service) SelectDateTime(ctx context.Context, visitorID, date, slot string) (domain.BookingState, error) {
	if date != "" {
		if _, err := time.Parse(domain.DateFormat, date); err != nil {
			return domain.BookingState{}, fmt.Errorf("%w: %q", booking.ErrInvalidDate, date)
		}
	}
	if _, err := time.Parse(slotFormat, slot); err != nil {
		return domain.BookingState{}, fmt.Errorf("%w: %q", ErrInvalidTime, slot)
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Booking.SelectDateTime(ctx, date, slot)
	return v.Booking.State(), nil
}

func (s *Service) UpdateNotes(ctx context.Context, visitorID, notes string) domain.BookingState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Booking.UpdateNotes(ctx, notes)
	return v.Booking.State()
}

func (s *Service) ClearBooking(ctx context.Context, visitorID string) domain.BookingState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Booking.ClearBooking(ctx)
	return v.Booking.State()
}
