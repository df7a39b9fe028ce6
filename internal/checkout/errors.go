package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidKind           = errors.New("checkout kind must be products or services")
	ErrNotOnConfirmationStep = errors.New("checkout can only be confirmed from the confirmation step")
	ErrTermsNotAccepted      = errors.New("please accept the terms and conditions to place your order")
	ErrNothingToConfirm      = errors.New("nothing to checkout")
	ErrIncompleteAppointment = errors.New("appointment needs a stylist, a date and a time")
	ErrAlreadyOnLastStep     = errors.New("checkout is already on the confirmation step")
	ErrStepInvalid           = errors.New("checkout step is incomplete")
)

// ValidationError lists the fields that keep a step from being completed,
// as field -> failed rule.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s step is incomplete: %s", e.Step, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrStepInvalid
}
