package domain

type ServiceCategory string

const (
	ServiceCut       ServiceCategory = "cut"
	ServiceColor     ServiceCategory = "color"
	ServiceTreatment ServiceCategory = "treatment"
	ServiceStyling   ServiceCategory = "styling"
)

// ServiceSelection is a salon service picked for the appointment. Services are
// not quantity-bearing.
type ServiceSelection struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DurationMinutes int             `json:"duration"`
	UnitPrice       float64         `json:"price"`
	Category        ServiceCategory `json:"category"`
}

type StylistChoice struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Image       string   `json:"image"`
	Specialties []string `json:"specialties"`
	Rating      float64  `json:"rating"`
}

// DateFormat is the calendar date layout used by booking dates.
const DateFormat = "2006-01-02"

type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type BookingState struct {
	SelectedServices []ServiceSelection `json:"selectedServices"`
	SelectedStylist  *StylistChoice     `json:"selectedStylist"`
	SelectedDate     *string            `json:"selectedDate"`
	SelectedTime     *string            `json:"selectedTime"`
	CustomerNotes    string             `json:"customerNotes"`
	TotalDuration    int                `json:"totalDuration"`
	TotalPrice       float64            `json:"totalPrice"`
}
