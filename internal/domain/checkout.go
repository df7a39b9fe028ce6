package domain

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentPayPal     PaymentMethod = "paypal"
)

const DefaultCountry = "Mexico"

type PersonalInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
}

type BillingInfo struct {
	Address1   string `json:"address1" validate:"required"`
	Address2   string `json:"address2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PaymentInfo is what a payment step submits. CardNumber and CardCVC are
// never persisted.
type PaymentInfo struct {
	Method     PaymentMethod `json:"paymentMethod" validate:"required,oneof=credit-card paypal"`
	CardNumber string        `json:"cardNumber"`
	CardExpiry string        `json:"cardExpiry"`
	CardCVC    string        `json:"cardCvc"`
	NameOnCard string        `json:"nameOnCard"`
}

// PaymentSummary is the persisted, scrubbed view of the payment step.
type PaymentSummary struct {
	Method     *PaymentMethod `json:"paymentMethod"`
	CardLast4  string         `json:"cardLast4"`
	CardExpiry string         `json:"cardExpiry"`
	NameOnCard string         `json:"nameOnCard"`
}

type CheckoutState struct {
	PersonalInfo
	BillingInfo
	PaymentSummary
	SpecialRequirements string `json:"specialRequirements"`
	CurrentStep         int    `json:"currentStep"`
	AcceptedTerms       bool   `json:"acceptedTerms"`
	MarketingConsent    bool   `json:"marketingConsent"`
}
