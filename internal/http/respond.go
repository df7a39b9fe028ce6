package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/apierr"
	"github.com/marte1309/PinkBlueberrySalon/internal/booking"
	"github.com/marte1309/PinkBlueberrySalon/internal/checkout"
	"github.com/marte1309/PinkBlueberrySalon/internal/storefront"
	"github.com/marte1309/PinkBlueberrySalon/internal/validation"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads the body into dst and validates it. It writes the error
// response itself and reports whether the handler should go on.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if !decodeBody(w, r, dst) {
		return false
	}
	if err := v.Struct(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "request validation failed",
			Code:   "invalid_request",
			Fields: validation.FieldErrors(err),
		})
		return false
	}
	return true
}

// decodeBody reads the body into dst without validating it. Checkout form
// steps accept partial input; completeness is checked when advancing.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid_request", "request body is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleServiceError maps storefront, checkout and identity errors to HTTP.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   verr.Error(),
			Code:    "step_incomplete",
			Details: verr.Step.String(),
			Fields:  verr.Fields,
		})
		return
	}

	var aerr *apierr.Error
	if errors.As(err, &aerr) {
		status, code := apiErrorStatus(aerr.Kind)
		respondError(w, status, code, aerr.Message)
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, storefront.ErrUnknownItem):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, storefront.ErrOutOfStock):
		httpStatus = http.StatusConflict
		code = "out_of_stock"
	case errors.Is(err, storefront.ErrInvalidTime), errors.Is(err, booking.ErrInvalidDate):
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case errors.Is(err, storefront.ErrNotAuthenticated):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case errors.Is(err, storefront.ErrSuperseded):
		httpStatus = http.StatusConflict
		code = "superseded"
	case errors.Is(err, checkout.ErrInvalidKind):
		httpStatus = http.StatusBadRequest
		code = "invalid_kind"
	case errors.Is(err, checkout.ErrNotOnConfirmationStep):
		httpStatus = http.StatusConflict
		code = "not_on_confirmation_step"
	case errors.Is(err, checkout.ErrTermsNotAccepted):
		httpStatus = http.StatusConflict
		code = "terms_not_accepted"
	case errors.Is(err, checkout.ErrNothingToConfirm):
		httpStatus = http.StatusConflict
		code = "nothing_to_checkout"
	case errors.Is(err, checkout.ErrIncompleteAppointment):
		httpStatus = http.StatusConflict
		code = "incomplete_appointment"
	case errors.Is(err, checkout.ErrAlreadyOnLastStep):
		httpStatus = http.StatusConflict
		code = "already_on_last_step"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	default:
		logger.FromContext(ctx).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}

func apiErrorStatus(kind apierr.Kind) (int, string) {
	switch kind {
	case apierr.KindValidation:
		return http.StatusBadRequest, "invalid_argument"
	case apierr.KindUnauthorized:
		return http.StatusUnauthorized, "unauthenticated"
	case apierr.KindNotConfirmed:
		return http.StatusForbidden, "not_confirmed"
	case apierr.KindForbidden:
		return http.StatusForbidden, "permission_denied"
	case apierr.KindNotFound:
		return http.StatusNotFound, "not_found"
	case apierr.KindConflict:
		return http.StatusConflict, "already_exists"
	case apierr.KindRateLimited:
		return http.StatusTooManyRequests, "rate_limit_exceeded"
	case apierr.KindUnavailable:
		return http.StatusServiceUnavailable, "service_unavailable"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
