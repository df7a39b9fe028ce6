// Package apierr classifies failures of upstream API calls into the small set
// of kinds the storefront shows to visitors.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindNotConfirmed Kind = "not-confirmed"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not-found"
	KindConflict     Kind = "conflict"
	KindRateLimited  Kind = "rate-limited"
	KindServerError  Kind = "server-error"
	KindUnavailable  Kind = "unavailable"
	KindGeneric      Kind = "generic"
)

// Error is a classified upstream failure. Message is safe to show to a visitor.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Override replaces the default message, and optionally the kind, for one
// status code of one call.
type Override struct {
	Kind    Kind
	Message string
}

// Overrides maps status codes to per-call overrides.
type Overrides map[int]Override

// Msg is shorthand for an override that keeps the default kind.
func Msg(message string) Override {
	return Override{Message: message}
}

var defaultMessages = map[int]string{
	http.StatusBadRequest:          "Bad request. Please check your input.",
	http.StatusUnauthorized:        "Authentication required. Please login again.",
	http.StatusForbidden:           "You do not have permission to perform this action.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusConflict:            "A conflict occurred. This resource may already exist.",
	http.StatusUnprocessableEntity: "Validation failed. Please check your input.",
	http.StatusTooManyRequests:     "Too many requests. Please try again later.",
}

const (
	serverErrorMessage = "Server error. Please try again later."
	genericMessage     = "An API error occurred"
	unavailableMessage = "Unable to reach the server. Please try again later."
)

// FromStatus classifies a non-2xx upstream response. upstream is the message
// the upstream sent, used only when no status-specific message applies.
func FromStatus(status int, upstream string, overrides Overrides) *Error {
	e := &Error{Status: status, Kind: kindForStatus(status)}

	if o, ok := overrides[status]; ok {
		e.Message = o.Message
		if o.Kind != "" {
			e.Kind = o.Kind
		}
		return e
	}

	switch {
	case defaultMessages[status] != "":
		e.Message = defaultMessages[status]
	case status >= http.StatusInternalServerError:
		e.Message = serverErrorMessage
	case upstream != "":
		e.Message = upstream
	default:
		e.Message = genericMessage
	}
	return e
}

// Unavailable wraps a transport failure: no response was received.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: unavailableMessage, Err: err}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= http.StatusInternalServerError:
		return KindServerError
	default:
		return KindGeneric
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindGeneric.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Retryable reports whether the failure came from the upstream being
// unhealthy rather than from the request itself.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindServerError, KindUnavailable:
		return true
	default:
		return false
	}
}
