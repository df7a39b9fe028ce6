package domain

type CommunicationPreference string

const (
	CommunicationEmail CommunicationPreference = "email"
	CommunicationSMS   CommunicationPreference = "sms"
	CommunicationBoth  CommunicationPreference = "both"
)

type RewardTier string

const (
	TierBronze   RewardTier = "bronze"
	TierSilver   RewardTier = "silver"
	TierGold     RewardTier = "gold"
	TierPlatinum RewardTier = "platinum"
)

type CustomerPreferences struct {
	FavoriteServices        []string                `json:"favoriteServices"`
	PreferredStylist        *string                 `json:"preferredStylist"`
	CommunicationPreference CommunicationPreference `json:"communicationPreference"`
	AppointmentReminders    bool                    `json:"appointmentReminders"`
	MarketingEmails         bool                    `json:"marketingEmails"`
}

// PreferencesPatch carries a partial preferences update; nil fields are kept.
type PreferencesPatch struct {
	PreferredStylist        *string                  `json:"preferredStylist,omitempty"`
	CommunicationPreference *CommunicationPreference `json:"communicationPreference,omitempty" validate:"omitempty,oneof=email sms both"`
	AppointmentReminders    *bool                    `json:"appointmentReminders,omitempty"`
	MarketingEmails         *bool                    `json:"marketingEmails,omitempty"`
}

type AppointmentStatus string

const (
	AppointmentUpcoming  AppointmentStatus = "upcoming"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type AppointmentHistory struct {
	ID       string            `json:"id"`
	Date     string            `json:"date"`
	Services []string          `json:"services"`
	Stylist  string            `json:"stylist"`
	Total    float64           `json:"total"`
	Status   AppointmentStatus `json:"status"`
}

type CustomerState struct {
	Preferences        CustomerPreferences  `json:"preferences"`
	AppointmentHistory []AppointmentHistory `json:"appointmentHistory"`
	RewardTier         RewardTier           `json:"rewardTier"`
}
