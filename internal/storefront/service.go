package storefront

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/auth"
	"github.com/marte1309/PinkBlueberrySalon/internal/booking"
	"github.com/marte1309/PinkBlueberrySalon/internal/cart"
	"github.com/marte1309/PinkBlueberrySalon/internal/catalog"
	"github.com/marte1309/PinkBlueberrySalon/internal/checkout"
	"github.com/marte1309/PinkBlueberrySalon/internal/customer"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/orders"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
	"github.com/marte1309/PinkBlueberrySalon/internal/validation"
	"github.com/marte1309/PinkBlueberrySalon/pkg/metrics"
)

const defaultAuthTimeout = 10 * time.Second

type Deps struct {
	Snapshots    snapshot.Store
	Catalog      catalog.Catalog
	Availability booking.Provider
	Orders       orders.Store
	Auth         auth.Gateway
	Metrics      *metrics.Metrics // optional
	Validate     *validator.Validate
	Clock        booking.Clock

	IdleTTL       time.Duration
	SweepInterval time.Duration
	AuthTimeout   time.Duration
}

// Service runs store actions for visitors. Every action locks the visitor
// for its duration, except that auth calls release the lock while the
// identity provider is working.
type Service struct {
	snapshots    snapshot.Store
	catalog      catalog.Catalog
	availability booking.Provider
	orders       orders.Store
	auth         auth.Gateway
	metrics      *metrics.Metrics
	validate     *validator.Validate
	clock        booking.Clock
	authTimeout  time.Duration
	registry     *Registry
}

func NewService(d Deps) *Service {
	s := &Service{
		snapshots:    d.Snapshots,
		catalog:      d.Catalog,
		availability: d.Availability,
		orders:       d.Orders,
		auth:         d.Auth,
		metrics:      d.Metrics,
		validate:     d.Validate,
		clock:        d.Clock,
		authTimeout:  d.AuthTimeout,
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.availability == nil {
		s.availability = booking.NewMockProvider(nil)
	}
	if s.authTimeout <= 0 {
		s.authTimeout = defaultAuthTimeout
	}
	s.registry = NewRegistry(s.hydrate, d.IdleTTL, d.SweepInterval)
	return s
}

func (s *Service) hydrate(ctx context.Context, visitorID string) *Visitor {
	bridge := snapshot.NewBridge(s.snapshots, visitorID, s.snapshotFailed)
	return &Visitor{
		Cart:     cart.Load(ctx, bridge),
		Booking:  booking.Load(ctx, bridge, s.clock),
		Checkout: checkout.Load(ctx, bridge, s.orders, s.validate),
		Session:  auth.Load(ctx, bridge),
		Customer: customer.Load(ctx, bridge),
	}
}

func (s *Service) snapshotFailed(op string) {
	if s.metrics != nil {
		s.metrics.SnapshotFailures.WithLabelValues(op).Inc()
	}
}

// Visitors reports how many visitors are held in memory.
func (s *Service) Visitors() int {
	return s.registry.Len()
}

func (s *Service) Close() error {
	return s.registry.Close()
}

func (s *Service) Products(ctx context.Context, category domain.ProductCategory) ([]domain.Product, error) {
	return s.catalog.ListProducts(ctx, category)
}

func (s *Service) Services(ctx context.Context, category domain.ServiceCategory) ([]domain.Service, error) {
	return s.catalog.ListServices(ctx, category)
}

func (s *Service) Stylists(ctx context.Context) ([]domain.Stylist, error) {
	return s.catalog.ListStylists(ctx)
}

func (s *Service) Stylist(ctx context.Context, id string) (*domain.Stylist, error) {
	st, err := s.catalog.GetStylist(ctx, id)
	if err != nil {
		return nil, catalogErr(err)
	}
	return st, nil
}

// Availability lists the slots for date, today when date is empty.
func (s *Service) Availability(ctx context.Context, date string) ([]domain.TimeSlot, error) {
	if date == "" {
		date = s.clock().Format(domain.DateFormat)
	}
	return s.availability.Slots(ctx, date)
}
