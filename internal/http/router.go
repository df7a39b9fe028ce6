// Package http exposes the storefront stores over a chi JSON API.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/validation"
	"github.com/marte1309/PinkBlueberrySalon/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// StorefrontService is everything the API needs from the storefront.
type StorefrontService interface {
	CatalogService
	CartService
	BookingService
	CheckoutService
	AuthService
	CustomerService
	OrdersService
}

type RouterConfig struct {
	Service StorefrontService
	Logger  *zap.Logger
	// Metrics and Gatherer are optional; /metrics is mounted only with a Gatherer.
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Validate     *validator.Validate
	Timeout      time.Duration
	MaxBodyBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
	if cfg.Validate == nil {
		cfg.Validate = validation.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	catalogHandler := NewCatalogHandler(cfg.Service, cfg.Timeout)
	cartHandler := NewCartHandler(cfg.Service, cfg.Validate, cfg.Timeout)
	bookingHandler := NewBookingHandler(cfg.Service, cfg.Validate, cfg.Timeout)
	checkoutHandler := NewCheckoutHandler(cfg.Service, cfg.Validate, cfg.Timeout)
	authHandler := NewAuthHandler(cfg.Service, cfg.Validate, cfg.Timeout)
	customerHandler := NewCustomerHandler(cfg.Service, cfg.Validate, cfg.Timeout)
	ordersHandler := NewOrdersHandler(cfg.Service, cfg.Timeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequestSize(cfg.MaxBodyBytes))

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/services", catalogHandler.ListServices)
		r.Get("/stylists", catalogHandler.ListStylists)
		r.Get("/stylists/{id}", catalogHandler.GetStylist)
		r.Get("/availability", catalogHandler.GetAvailability)

		r.Group(func(r chi.Router) {
			r.Use(VisitorMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{id}", cartHandler.UpdateItem)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
			})

			r.Route("/booking", func(r chi.Router) {
				r.Get("/", bookingHandler.GetBooking)
				r.Delete("/", bookingHandler.ClearBooking)
				r.Post("/services", bookingHandler.AddService)
				r.Delete("/services/{id}", bookingHandler.RemoveService)
				r.Put("/stylist", bookingHandler.SelectStylist)
				r.Put("/datetime", bookingHandler.SelectDateTime)
				r.Put("/notes", bookingHandler.UpdateNotes)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetCheckout)
				r.Put("/personal", checkoutHandler.UpdatePersonal)
				r.Put("/billing", checkoutHandler.UpdateBilling)
				r.Put("/payment", checkoutHandler.UpdatePayment)
				r.Put("/requirements", checkoutHandler.UpdateRequirements)
				r.Put("/terms", checkoutHandler.UpdateTerms)
				r.Post("/next", checkoutHandler.Next)
				r.Post("/prev", checkoutHandler.Prev)
				r.Put("/step", checkoutHandler.SetStep)
				r.Post("/confirm", checkoutHandler.Confirm)
				r.Post("/reset", checkoutHandler.Reset)
			})

			r.Route("/auth", func(r chi.Router) {
				r.Get("/session", authHandler.GetSession)
				r.Post("/login", authHandler.Login)
				r.Post("/register", authHandler.Register)
				r.Post("/logout", authHandler.Logout)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/forgot-password", authHandler.ForgotPassword)
				r.Post("/reset-password", authHandler.ResetPassword)
				r.Put("/reward-points", authHandler.UpdateRewardPoints)
			})

			r.Route("/customer", func(r chi.Router) {
				r.Get("/", customerHandler.GetCustomer)
				r.Put("/preferences", customerHandler.UpdatePreferences)
				r.Post("/favorites/{id}", customerHandler.AddFavorite)
				r.Delete("/favorites/{id}", customerHandler.RemoveFavorite)
			})

			r.Get("/orders", ordersHandler.ListOrders)
		})
	})

	return r
}
