package booking

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

// Provider answers which slots can be booked on a date (YYYY-MM-DD).
type Provider interface {
	Slots(ctx context.Context, date string) ([]domain.TimeSlot, error)
}

const (
	slotStep            = 30 * time.Minute
	defaultAvailability = 0.6
)

type openingHours struct {
	open, close int
}

var (
	weekdayHours = openingHours{open: 8, close: 19}
	weekendHours = openingHours{open: 9, close: 17}
)

// MockProvider stands in for a scheduling backend: it lists half-hour slots
// within opening hours and flags each one available at random.
type MockProvider struct {
	mu          sync.Mutex
	rnd         func() float64
	probability float64
}

// NewMockProvider uses rnd (values in [0,1)) to draw availability flags.
// A nil rnd uses a time-seeded source.
func NewMockProvider(rnd func() float64) *MockProvider {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())).Float64
	}
	return &MockProvider{rnd: rnd, probability: defaultAvailability}
}

func (p *MockProvider) Slots(_ context.Context, date string) ([]domain.TimeSlot, error) {
	day, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	hours := weekdayHours
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		hours = weekendHours
	}

	start := day.Add(time.Duration(hours.open) * time.Hour)
	end := day.Add(time.Duration(hours.close) * time.Hour)

	p.mu.Lock()
	defer p.mu.Unlock()

	var slots []domain.TimeSlot
	for t := start; t.Before(end); t = t.Add(slotStep) {
		slots = append(slots, domain.TimeSlot{
			Time:      t.Format("15:04"),
			Available: p.rnd() < p.probability,
		})
	}
	return slots, nil
}
