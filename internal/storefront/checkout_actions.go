package storefront

import (
	"context"

	"github.com/marte1309/PinkBlueberrySalon/internal/checkout"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"go.uber.org/zap"
)

func (s *Service) Checkout(ctx context.Context, visitorID string) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	return v.Checkout.State()
}

func (s *Service) UpdatePersonalInfo(ctx context.Context, visitorID string, info domain.PersonalInfo) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.UpdatePersonalInfo(ctx, info)
	return v.Checkout.State()
}

func (s *Service) UpdateBillingInfo(ctx context.Context, visitorID string, info domain.BillingInfo) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.UpdateBillingInfo(ctx, info)
	return v.Checkout.State()
}

// UpdatePaymentInfo validates the full submission, card number and CVC
// included, before the scrubbed summary is stored.
func (s *Service) UpdatePaymentInfo(ctx context.Context, visitorID string, info domain.PaymentInfo) (domain.CheckoutState, error) {
	if err := checkout.ValidatePayment(s.validate, info); err != nil {
		return domain.CheckoutState{}, err
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.UpdatePaymentInfo(ctx, info)
	return v.Checkout.State(), nil
}

func (s *Service) UpdateSpecialRequirements(ctx context.Context, visitorID, text string) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.UpdateSpecialRequirements(ctx, text)
	return v.Checkout.State()
}

func (s *Service) UpdateTerms(ctx context.Context, visitorID string, acceptedTerms, marketingConsent bool) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.UpdateTerms(ctx, acceptedTerms, marketingConsent)
	return v.Checkout.State()
}

// NextStep is the validated forward move.
func (s *Service) NextStep(ctx context.Context, visitorID string, kind domain.OrderKind) (domain.CheckoutState, error) {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	if err := v.Checkout.Advance(ctx, kind); err != nil {
		return v.Checkout.State(), err
	}
	return v.Checkout.State(), nil
}

func (s *Service) PrevStep(ctx context.Context, visitorID string) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.PrevStep(ctx)
	return v.Checkout.State()
}

func (s *Service) SetCurrentStep(ctx context.Context, visitorID string, step int) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.SetCurrentStep(ctx, step)
	return v.Checkout.State()
}

func (s *Service) ResetCheckout(ctx context.Context, visitorID string) domain.CheckoutState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	v.Checkout.Reset(ctx)
	return v.Checkout.State()
}

// ConfirmOrder drains the cart (products) or the booking (services) into an
// order. A confirmed booking is also added to the visitor's appointment
// history.
func (s *Service) ConfirmOrder(ctx context.Context, visitorID string, kind domain.OrderKind) (*domain.Confirmation, error) {
	if !kind.Valid() {
		return nil, checkout.ErrInvalidKind
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()

	var src checkout.Source = v.Cart
	if kind == domain.KindServices {
		src = v.Booking
	}
	pending := v.Booking.State()

	conf, err := v.Checkout.ConfirmOrder(ctx, kind, src, v.Session.UserID())
	if err != nil {
		logger.FromContext(ctx).Info("checkout not confirmed",
			zap.String("visitor_id", visitorID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersConfirmed.WithLabelValues(string(kind)).Inc()
	}
	if kind == domain.KindServices {
		v.Customer.AddAppointment(ctx, appointmentFrom(conf, pending))
	}
	return conf, nil
}

func appointmentFrom(conf *domain.Confirmation, b domain.BookingState) domain.AppointmentHistory {
	a := domain.AppointmentHistory{
		ID:       conf.OrderID,
		Services: make([]string, 0, len(b.SelectedServices)),
		Total:    conf.TotalAmount,
		Status:   domain.AppointmentUpcoming,
	}
	for _, svc := range b.SelectedServices {
		a.Services = append(a.Services, svc.Name)
	}
	if b.SelectedDate != nil {
		a.Date = *b.SelectedDate
		if b.SelectedTime != nil {
			a.Date += "T" + *b.SelectedTime
		}
	}
	if b.SelectedStylist != nil {
		a.Stylist = b.SelectedStylist.Name
	}
	return a
}
