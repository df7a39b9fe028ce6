package checkout

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/validation"
)

type requirementsStep struct {
	SpecialRequirements string `json:"specialRequirements" validate:"max=2000"`
}

type paymentStep struct {
	Method *domain.PaymentMethod `json:"paymentMethod" validate:"required"`
}

type cardStep struct {
	CardLast4  string `json:"cardNumber" validate:"required,len=4,numeric"`
	CardExpiry string `json:"cardExpiry" validate:"required,card_expiry"`
	NameOnCard string `json:"nameOnCard" validate:"required"`
}

// cardSubmission checks only the card fields that were actually sent;
// omitted fields keep their stored value.
type cardSubmission struct {
	CardNumber string `json:"cardNumber" validate:"omitempty,credit_card"`
	CardExpiry string `json:"cardExpiry" validate:"omitempty,card_expiry"`
	CardCVC    string `json:"cardCvc" validate:"omitempty,numeric,min=3,max=4"`
}

// ValidatePayment checks a payment submission before it is applied.
func ValidatePayment(v *validator.Validate, info domain.PaymentInfo) error {
	if err := v.Struct(info); err != nil {
		return stepError(StepPayment, err)
	}
	if info.Method != domain.PaymentCreditCard {
		return nil
	}
	sub := cardSubmission{
		CardNumber: info.CardNumber,
		CardExpiry: info.CardExpiry,
		CardCVC:    info.CardCVC,
	}
	if err := v.Struct(sub); err != nil {
		return stepError(StepPayment, err)
	}
	return nil
}

func validateStep(v *validator.Validate, st domain.CheckoutState, kind domain.OrderKind, step Step) error {
	var err error
	switch step {
	case StepPersonalInfo:
		err = v.Struct(st.PersonalInfo)
	case StepBillingOrRequirements:
		if kind == domain.KindProducts {
			err = v.Struct(st.BillingInfo)
		} else {
			err = v.Struct(requirementsStep{SpecialRequirements: st.SpecialRequirements})
		}
	case StepPayment:
		err = v.Struct(paymentStep{Method: st.PaymentSummary.Method})
		if err == nil && *st.PaymentSummary.Method == domain.PaymentCreditCard {
			err = v.Struct(cardStep{
				CardLast4:  st.CardLast4,
				CardExpiry: st.PaymentSummary.CardExpiry,
				NameOnCard: st.NameOnCard,
			})
		}
	}
	if err != nil {
		return stepError(step, err)
	}
	return nil
}

func stepError(step Step, err error) error {
	fields := validation.FieldErrors(err)
	if fields == nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return err
		}
		fields = map[string]string{}
	}
	return &ValidationError{Step: step, Fields: fields}
}

func lastFour(cardNumber string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cardNumber)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
