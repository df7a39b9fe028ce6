// Package checkout implements the four-step checkout wizard shared by product
// orders and service bookings.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"go.uber.org/zap"
)

// Source is the draft a checkout drains: the cart for products, the
// booking for services.
type Source interface {
	Empty() bool
	Draft() domain.OrderDraft
	Clear(ctx context.Context)
}

type OrderSubmitter interface {
	Submit(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error)
}

// Wizard holds the checkout draft. Moving forward with NextStep or
// SetCurrentStep is not gated; Advance is the validated path. Not safe for
// concurrent use.
type Wizard struct {
	bridge    *snapshot.Bridge
	submitter OrderSubmitter
	validate  *validator.Validate
	state     domain.CheckoutState
}

func initialState() domain.CheckoutState {
	st := domain.CheckoutState{CurrentStep: int(firstStep)}
	st.Country = domain.DefaultCountry
	return st
}

// Load hydrates the wizard from the visitor's snapshot over the defaults.
func Load(ctx context.Context, bridge *snapshot.Bridge, submitter OrderSubmitter, v *validator.Validate) *Wizard {
	w := &Wizard{
		bridge:    bridge,
		submitter: submitter,
		validate:  v,
		state:     initialState(),
	}

	stored := initialState()
	if bridge.Load(ctx, snapshot.KeyCheckout, &stored) {
		stored.CurrentStep = int(clampStep(stored.CurrentStep))
		w.state = stored
	}
	return w
}

func (w *Wizard) State() domain.CheckoutState {
	st := w.state
	if st.Method != nil {
		m := *st.Method
		st.Method = &m
	}
	return st
}

func (w *Wizard) Step() Step {
	return Step(w.state.CurrentStep)
}

func (w *Wizard) UpdatePersonalInfo(ctx context.Context, info domain.PersonalInfo) {
	w.state.PersonalInfo = info
	w.persist(ctx)
}

func (w *Wizard) UpdateBillingInfo(ctx context.Context, info domain.BillingInfo) {
	w.state.BillingInfo = info
	w.persist(ctx)
}

// UpdatePaymentInfo records the payment method. Card fields only apply to
// credit-card payments and an empty field keeps the stored value. Only the
// last four digits of the card number are kept; the CVC is dropped.
func (w *Wizard) UpdatePaymentInfo(ctx context.Context, info domain.PaymentInfo) {
	method := info.Method
	w.state.Method = &method

	if method == domain.PaymentCreditCard {
		if info.CardNumber != "" {
			w.state.CardLast4 = lastFour(info.CardNumber)
		}
		if info.CardExpiry != "" {
			w.state.PaymentSummary.CardExpiry = info.CardExpiry
		}
		if info.NameOnCard != "" {
			w.state.NameOnCard = info.NameOnCard
		}
	}
	w.persist(ctx)
}

func (w *Wizard) UpdateSpecialRequirements(ctx context.Context, text string) {
	w.state.SpecialRequirements = text
	w.persist(ctx)
}

func (w *Wizard) UpdateTerms(ctx context.Context, acceptedTerms, marketingConsent bool) {
	w.state.AcceptedTerms = acceptedTerms
	w.state.MarketingConsent = marketingConsent
	w.persist(ctx)
}

// NextStep moves one step forward and reports whether it moved. On the
// confirmation step it does nothing.
func (w *Wizard) NextStep(ctx context.Context) bool {
	if w.Step() >= lastStep {
		return false
	}
	w.state.CurrentStep++
	w.persist(ctx)
	return true
}

// PrevStep moves one step back, never below the first step.
func (w *Wizard) PrevStep(ctx context.Context) {
	w.state.CurrentStep = int(clampStep(w.state.CurrentStep - 1))
	w.persist(ctx)
}

// SetCurrentStep jumps to step n, clamped to the valid range.
func (w *Wizard) SetCurrentStep(ctx context.Context, n int) {
	w.state.CurrentStep = int(clampStep(n))
	w.persist(ctx)
}

// ValidateStep checks the fields the given step collects.
func (w *Wizard) ValidateStep(kind domain.OrderKind, step Step) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	return validateStep(w.validate, w.state, kind, step)
}

// Advance validates the current step and then moves to the next one.
func (w *Wizard) Advance(ctx context.Context, kind domain.OrderKind) error {
	if err := w.ValidateStep(kind, w.Step()); err != nil {
		return err
	}
	if !w.NextStep(ctx) {
		return ErrAlreadyOnLastStep
	}
	return nil
}

// ConfirmOrder places the order for src. It must be called on the
// confirmation step with the terms accepted. On success the source draft is
// cleared and the wizard is reset; on any failure nothing changes.
func (w *Wizard) ConfirmOrder(ctx context.Context, kind domain.OrderKind, src Source, userID string) (*domain.Confirmation, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if w.Step() != StepConfirmation {
		return nil, ErrNotOnConfirmationStep
	}
	if !w.state.AcceptedTerms {
		return nil, ErrTermsNotAccepted
	}
	if src.Empty() {
		return nil, ErrNothingToConfirm
	}

	draft := src.Draft()
	if kind == domain.KindServices {
		a := draft.Appointment
		if a == nil || a.StylistID == "" || a.Date == "" || a.Time == "" {
			return nil, ErrIncompleteAppointment
		}
	}

	req := &domain.OrderRequest{
		VisitorID:        w.bridge.VisitorID(),
		UserID:           userID,
		Kind:             kind,
		Contact:          w.state.PersonalInfo,
		Payment:          w.state.PaymentSummary,
		MarketingConsent: w.state.MarketingConsent,
		Draft:            draft,
		Currency:         domain.DefaultCurrency,
	}
	if kind == domain.KindProducts {
		billing := w.state.BillingInfo
		req.Shipping = &billing
	} else {
		req.SpecialRequirements = w.state.SpecialRequirements
	}

	order, err := w.submitter.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s order: %w", kind, err)
	}

	src.Clear(ctx)
	w.Reset(ctx)

	logger.FromContext(ctx).Info("checkout confirmed",
		zap.String("visitor_id", req.VisitorID),
		zap.String("order_id", order.ID.String()),
		zap.String("kind", string(kind)),
		zap.Float64("total", order.TotalAmount))

	placedAt := order.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}
	return &domain.Confirmation{
		OrderID:     order.ID.String(),
		Kind:        kind,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Message:     confirmationMessage(kind),
		PlacedAt:    placedAt,
	}, nil
}

// Reset returns the wizard to step one, keeping only the contact details and
// country.
func (w *Wizard) Reset(ctx context.Context) {
	prev := w.state
	w.state = initialState()
	w.state.PersonalInfo = prev.PersonalInfo
	w.state.Country = prev.Country
	w.persist(ctx)
}

func (w *Wizard) persist(ctx context.Context) {
	w.bridge.Save(ctx, snapshot.KeyCheckout, w.state)
}

func confirmationMessage(kind domain.OrderKind) string {
	if kind == domain.KindProducts {
		return "Your order has been successfully placed. You will receive a confirmation email shortly."
	}
	return "Your appointment has been successfully booked. You will receive a confirmation email shortly."
}
