package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is the currency catalog prices are quoted in.
const DefaultCurrency = "MXN"

// OrderKind selects which draft a checkout drains.
type OrderKind string

const (
	KindProducts OrderKind = "products"
	KindServices OrderKind = "services"
)

func (k OrderKind) Valid() bool {
	return k == KindProducts || k == KindServices
}

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusBooked    OrderStatus = "BOOKED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type OrderLine struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type AppointmentDetails struct {
	StylistID       string `json:"stylist_id"`
	StylistName     string `json:"stylist_name"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes,omitempty"`
}

// OrderDraft is what a source draft contributes to a confirmation.
type OrderDraft struct {
	Lines       []OrderLine
	Total       float64
	Appointment *AppointmentDetails
}

func (d OrderDraft) Empty() bool {
	return len(d.Lines) == 0
}

// OrderRequest is handed to the order submitter when a checkout is confirmed.
type OrderRequest struct {
	VisitorID           string
	UserID              string
	Kind                OrderKind
	Contact             PersonalInfo
	Shipping            *BillingInfo
	SpecialRequirements string
	Payment             PaymentSummary
	MarketingConsent    bool
	Draft               OrderDraft
	Currency            string
}

type Order struct {
	ID                  uuid.UUID           `json:"id"`
	VisitorID           string              `json:"visitor_id"`
	UserID              string              `json:"user_id,omitempty"`
	Kind                OrderKind           `json:"kind"`
	Status              OrderStatus         `json:"status"`
	Contact             PersonalInfo        `json:"contact"`
	Shipping            *BillingInfo        `json:"shipping,omitempty"`
	SpecialRequirements string              `json:"special_requirements,omitempty"`
	Payment             PaymentSummary      `json:"payment"`
	Items               []OrderLine         `json:"items"`
	Appointment         *AppointmentDetails `json:"appointment,omitempty"`
	TotalAmount         float64             `json:"total_amount"`
	Currency            string              `json:"currency"`
	CreatedAt           time.Time           `json:"created_at"`
}

// Confirmation is the terminal success event of a checkout.
type Confirmation struct {
	OrderID     string    `json:"order_id"`
	Kind        OrderKind `json:"kind"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	Message     string    `json:"message"`
	PlacedAt    time.Time `json:"placed_at"`
}
