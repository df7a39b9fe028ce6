package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type CheckoutService interface {
	Checkout(ctx context.Context, visitorID string) domain.CheckoutState
	UpdatePersonalInfo(ctx context.Context, visitorID string, info domain.PersonalInfo) domain.CheckoutState
	UpdateBillingInfo(ctx context.Context, visitorID string, info domain.BillingInfo) domain.CheckoutState
	UpdatePaymentInfo(ctx context.Context, visitorID string, info domain.PaymentInfo) (domain.CheckoutState, error)
	UpdateSpecialRequirements(ctx context.Context, visitorID, text string) domain.CheckoutState
	UpdateTerms(ctx context.Context, visitorID string, acceptedTerms, marketingConsent bool) domain.CheckoutState
	NextStep(ctx context.Context, visitorID string, kind domain.OrderKind) (domain.CheckoutState, error)
	PrevStep(ctx context.Context, visitorID string) domain.CheckoutState
	SetCurrentStep(ctx context.Context, visitorID string, step int) domain.CheckoutState
	ResetCheckout(ctx context.Context, visitorID string) domain.CheckoutState
	ConfirmOrder(ctx context.Context, visitorID string, kind domain.OrderKind) (*domain.Confirmation, error)
}

type CheckoutHandler struct {
	svc      CheckoutService
	validate *validator.Validate
	timeout  time.Duration
}

func NewCheckoutHandler(svc CheckoutService, v *validator.Validate, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, validate: v, timeout: timeout}
}

type RequirementsRequest struct {
	SpecialRequirements string `json:"specialRequirements" validate:"max=2000"`
}

type TermsRequest struct {
	AcceptedTerms    bool `json:"acceptedTerms"`
	MarketingConsent bool `json:"marketingConsent"`
}

type StepRequest struct {
	Step int `json:"step"`
}

type KindRequest struct {
	Kind domain.OrderKind `json:"kind" validate:"required"`
}

// GetCheckout handles GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Checkout(r.Context(), getVisitorID(r.Context())))
}

// UpdatePersonal handles PUT /api/v1/checkout/personal
func (h *CheckoutHandler) UpdatePersonal(w http.ResponseWriter, r *http.Request) {
	var req domain.PersonalInfo
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.UpdatePersonalInfo(ctx, getVisitorID(ctx), req))
}

// UpdateBilling handles PUT /api/v1/checkout/billing
func (h *CheckoutHandler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	var req domain.BillingInfo
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.UpdateBillingInfo(ctx, getVisitorID(ctx), req))
}

// UpdatePayment handles PUT /api/v1/checkout/payment. Card data is checked
// and reduced to a summary; the full number is never stored.
func (h *CheckoutHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentInfo
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	state, err := h.svc.UpdatePaymentInfo(ctx, getVisitorID(ctx), req)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// UpdateRequirements handles PUT /api/v1/checkout/requirements
func (h *CheckoutHandler) UpdateRequirements(w http.ResponseWriter, r *http.Request) {
	var req RequirementsRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.UpdateSpecialRequirements(ctx, getVisitorID(ctx), req.SpecialRequirements))
}

// UpdateTerms handles PUT /api/v1/checkout/terms
func (h *CheckoutHandler) UpdateTerms(w http.ResponseWriter, r *http.Request) {
	var req TermsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.UpdateTerms(ctx, getVisitorID(ctx), req.AcceptedTerms, req.MarketingConsent))
}

// Next handles POST /api/v1/checkout/next. The current step must be
// complete for the given kind.
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req KindRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()
	state, err := h.svc.NextStep(ctx, getVisitorID(ctx), req.Kind)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Prev handles POST /api/v1/checkout/prev
func (h *CheckoutHandler) Prev(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.PrevStep(ctx, getVisitorID(ctx)))
}

// SetStep handles PUT /api/v1/checkout/step
func (h *CheckoutHandler) SetStep(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.SetCurrentStep(ctx, getVisitorID(ctx), req.Step))
}

// Confirm handles POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req KindRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	conf, err := h.svc.ConfirmOrder(ctx, getVisitorID(ctx), req.Kind)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, conf)
}

// Reset handles POST /api/v1/checkout/reset
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, h.svc.ResetCheckout(ctx, getVisitorID(ctx)))
}
