package domain

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone,omitempty"`
	RewardPoints int    `json:"rewardPoints"`
}

type SessionState struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	Loading         bool   `json:"loading"`
	RememberEmail   string `json:"rememberEmail,omitempty"`
}

// AuthResult is what the identity provider hands back on login, refresh, or
// an auto-confirmed registration. Token is empty when the account still needs
// confirmation.
type AuthResult struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"-"`
	Message      string `json:"message,omitempty"`
	Confirmed    bool   `json:"confirmed"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" validate:"required,min=8,strong_password"`
}
