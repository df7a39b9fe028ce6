package domain

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Image       string          `json:"image"`
	Category    ProductCategory `json:"category"`
	Brand       string          `json:"brand"`
	InStock     bool            `json:"inStock"`
}

func (p Product) CartItem() CartItem {
	return CartItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Category:  p.Category,
	}
}

type Service struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration"`
	Price           float64         `json:"price"`
	Category        ServiceCategory `json:"category"`
	Image           string          `json:"image"`
}

func (s Service) Selection() ServiceSelection {
	return ServiceSelection{
		ID:              s.ID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		UnitPrice:       s.Price,
		Category:        s.Category,
	}
}

type Stylist struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Bio             string   `json:"bio"`
	Image           string   `json:"image"`
	Specialties     []string `json:"specialties"`
	Rating          float64  `json:"rating"`
	YearsExperience int      `json:"yearsExperience"`
}

func (s Stylist) Choice() StylistChoice {
	return StylistChoice{
		ID:          s.ID,
		Name:        s.Name,
		Image:       s.Image,
		Specialties: s.Specialties,
		Rating:      s.Rating,
	}
}
