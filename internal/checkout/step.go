package checkout

type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepBillingOrRequirements
	StepPayment
	StepConfirmation
)

const (
	firstStep = StepPersonalInfo
	lastStep  = StepConfirmation
)

func (s Step) Valid() bool {
	return s >= firstStep && s <= lastStep
}

// String representation (for logging)
func (s Step) String() string {
	switch s {
	case StepPersonalInfo:
		return "personal-info"
	case StepBillingOrRequirements:
		return "billing-or-requirements"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

func clampStep(n int) Step {
	if n < int(firstStep) {
		return firstStep
	}
	if n > int(lastStep) {
		return lastStep
	}
	return Step(n)
}
