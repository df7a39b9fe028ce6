package auth

import (
	"net/http"

	"github.com/marte1309/PinkBlueberrySalon/internal/apierr"
)

// Per-call messages shown to visitors, keyed by upstream status.
var (
	loginOverrides = apierr.Overrides{
		http.StatusUnauthorized:    apierr.Msg("Invalid email or password. Please try again."),
		http.StatusForbidden:       {Kind: apierr.KindNotConfirmed, Message: "Please confirm your email address before logging in."},
		http.StatusNotFound:        apierr.Msg("No account found for this email address."),
		http.StatusTooManyRequests: apierr.Msg("Too many login attempts. Please try again later."),
	}
	registerOverrides = apierr.Overrides{
		http.StatusConflict:            apierr.Msg("This email is already registered. Please use a different email or try to login."),
		http.StatusBadRequest:          apierr.Msg("Please check your information and try again. All required fields must be provided."),
		http.StatusUnprocessableEntity: apierr.Msg("Password does not meet security requirements. It must contain uppercase, lowercase, numbers and special characters."),
	}
	refreshOverrides = apierr.Overrides{
		http.StatusUnauthorized: apierr.Msg("Your session has expired. Please login again."),
	}
	forgotPasswordOverrides = apierr.Overrides{
		http.StatusNotFound: apierr.Msg("Email address not found. Please check and try again."),
	}
	resetPasswordOverrides = apierr.Overrides{
		http.StatusBadRequest:          apierr.Msg("Invalid or expired token. Please request a new password reset link."),
		http.StatusUnprocessableEntity: apierr.Msg("Password does not meet the security requirements."),
	}
)
