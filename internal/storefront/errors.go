package storefront

import "errors"

var (
	ErrUnknownItem      = errors.New("item not found in catalog")
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrInvalidTime      = errors.New("invalid time slot")
	ErrNotAuthenticated = errors.New("sign in required")
	// ErrSuperseded is returned by an auth call whose result was dropped
	// because a newer login, register or logout started meanwhile.
	ErrSuperseded = errors.New("auth request superseded by a newer one")
)
