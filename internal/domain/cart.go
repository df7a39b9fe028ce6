package domain

type ProductCategory string

const (
	CategoryHairCare    ProductCategory = "hair-care"
	CategoryStyling     ProductCategory = "styling"
	CategoryColor       ProductCategory = "color"
	CategoryAccessories ProductCategory = "accessories"
)

// CartItem is one line of the cart ledger. Unique by ID.
type CartItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice float64         `json:"price"`
	Image     string          `json:"image"`
	Category  ProductCategory `json:"category"`
	Quantity  int             `json:"quantity"`
}

func (i CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

type CartState struct {
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
}
