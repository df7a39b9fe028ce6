package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marte1309/PinkBlueberrySalon/internal/apierr"
	"github.com/marte1309/PinkBlueberrySalon/internal/booking"
	"github.com/marte1309/PinkBlueberrySalon/internal/checkout"
	"github.com/marte1309/PinkBlueberrySalon/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServiceError_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"unknown item", storefront.ErrUnknownItem, http.StatusNotFound, "not_found"},
		{"wrapped unknown item", fmt.Errorf("product x: %w", storefront.ErrUnknownItem), http.StatusNotFound, "not_found"},
		{"out of stock", storefront.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
		{"invalid time", storefront.ErrInvalidTime, http.StatusBadRequest, "invalid_argument"},
		{"invalid date", booking.ErrInvalidDate, http.StatusBadRequest, "invalid_argument"},
		{"not authenticated", storefront.ErrNotAuthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"superseded", storefront.ErrSuperseded, http.StatusConflict, "superseded"},
		{"invalid kind", checkout.ErrInvalidKind, http.StatusBadRequest, "invalid_kind"},
		{"not on confirmation", checkout.ErrNotOnConfirmationStep, http.StatusConflict, "not_on_confirmation_step"},
		{"terms", checkout.ErrTermsNotAccepted, http.StatusConflict, "terms_not_accepted"},
		{"nothing to checkout", checkout.ErrNothingToConfirm, http.StatusConflict, "nothing_to_checkout"},
		{"incomplete appointment", checkout.ErrIncompleteAppointment, http.StatusConflict, "incomplete_appointment"},
		{"last step", checkout.ErrAlreadyOnLastStep, http.StatusConflict, "already_on_last_step"},
		{"api validation", apierr.New(apierr.KindValidation, "bad"), http.StatusBadRequest, "invalid_argument"},
		{"api unauthorized", apierr.New(apierr.KindUnauthorized, "bad"), http.StatusUnauthorized, "unauthenticated"},
		{"api not confirmed", apierr.New(apierr.KindNotConfirmed, "bad"), http.StatusForbidden, "not_confirmed"},
		{"api forbidden", apierr.New(apierr.KindForbidden, "bad"), http.StatusForbidden, "permission_denied"},
		{"api not found", apierr.New(apierr.KindNotFound, "bad"), http.StatusNotFound, "not_found"},
		{"api conflict", apierr.New(apierr.KindConflict, "bad"), http.StatusConflict, "already_exists"},
		{"api rate limited", apierr.New(apierr.KindRateLimited, "bad"), http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"api server error", apierr.New(apierr.KindServerError, "bad"), http.StatusBadGateway, "upstream_error"},
		{"api unavailable", apierr.New(apierr.KindUnavailable, "bad"), http.StatusServiceUnavailable, "service_unavailable"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(context.Background(), rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantBody, resp.Code)
		})
	}
}

func TestHandleServiceError_APIMessageIsShown(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(context.Background(), rec, apierr.New(apierr.KindUnauthorized, "Invalid email or password"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Invalid email or password", resp.Error)
}

func TestHandleServiceError_StepValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &checkout.ValidationError{
		Step:   checkout.StepPersonalInfo,
		Fields: map[string]string{"email": "required"},
	}
	handleServiceError(context.Background(), rec, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "step_incomplete", resp.Code)
	assert.Equal(t, "required", resp.Fields["email"])
}

func TestHandleServiceError_InternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(context.Background(), rec, errors.New("pq: connection refused"))

	assert.NotContains(t, rec.Body.String(), "pq:")
}
