package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marte1309/PinkBlueberrySalon/internal/auth"
	"github.com/marte1309/PinkBlueberrySalon/internal/catalog"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/orders"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
	"github.com/marte1309/PinkBlueberrySalon/internal/storefront"
	"github.com/marte1309/PinkBlueberrySalon/internal/validation"
	"github.com/marte1309/PinkBlueberrySalon/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	orders  *orders.MemoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations("../catalog/migrations"))
	t.Cleanup(func() { _ = repo.Close() })

	v := validation.New()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ordersRepo := orders.NewMemoryRepository()

	svc := storefront.NewService(storefront.Deps{
		Snapshots: snapshot.NewMemoryStore(),
		Catalog:   repo,
		Orders:    ordersRepo,
		Auth:      auth.NewMemoryGateway([]byte("test-secret"), true, v),
		Metrics:   m,
		Validate:  v,
		Clock: func() time.Time {
			return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		},
	})
	t.Cleanup(func() { _ = svc.Close() })

	return &testServer{
		handler: NewRouter(RouterConfig{
			Service:  svc,
			Logger:   zap.NewNop(),
			Metrics:  m,
			Gatherer: reg,
			Validate: v,
			Timeout:  5 * time.Second,
		}),
		orders: ordersRepo,
	}
}

func (s *testServer) do(t *testing.T, method, path, visitorID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if visitorID != "" {
		req.Header.Set(VisitorHeader, visitorID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/products?category=accessories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]domain.Product](t, rec)
	assert.Len(t, products, 4)

	rec = s.do(t, http.MethodGet, "/api/v1/services", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Service](t, rec), 15)

	rec = s.do(t, http.MethodGet, "/api/v1/stylists/stylist-2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Marcus Chen", decode[domain.Stylist](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/v1/stylists/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailability(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/availability?date=2026-03-20", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AvailabilityResponse](t, rec)
	assert.Equal(t, "2026-03-20", resp.Date)
	assert.NotEmpty(t, resp.Slots)

	rec = s.do(t, http.MethodGet, "/api/v1/availability?date=20-03-2026", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisitorMiddleware_IssuesID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get(VisitorHeader))
	assert.NoError(t, err)
}

func TestVisitorMiddleware_RejectsMalformedID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/cart", "not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_visitor_id", decode[ErrorResponse](t, rec).Code)
}

func TestCartRoutes(t *testing.T) {
	s := newTestServer(t)
	vid := uuid.NewString()

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", vid, AddItemRequest{ProductID: "silk-pillowcase", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, vid, rec.Header().Get(VisitorHeader))

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/silk-pillowcase", vid, UpdateQuantityRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[domain.CartState](t, rec)
	assert.Equal(t, 3, cart.ItemCount)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", vid, nil)
	assert.Equal(t, 3, decode[domain.CartState](t, rec).ItemCount)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/items/silk-pillowcase", vid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.CartState](t, rec).Items)
}

func TestCartRoutes_BadRequests(t *testing.T) {
	s := newTestServer(t)
	vid := uuid.NewString()

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", vid, map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "required", decode[ErrorResponse](t, rec).Fields["product_id"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{"))
	req.Header.Set(VisitorHeader, vid)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items", vid, AddItemRequest{ProductID: "no-such-product"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingRoutes(t *testing.T) {
	s := newTestServer(t)
	vid := uuid.NewString()

	rec := s.do(t, http.MethodPost, "/api/v1/booking/services", vid, AddServiceRequest{ServiceID: "balayage"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/booking/stylist", vid, SelectStylistRequest{StylistID: "stylist-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/booking/datetime", vid, SelectDateTimeRequest{Date: "2026-03-20", Time: "10:00"})
	require.Equal(t, http.StatusOK, rec.Code)
	booking := decode[domain.BookingState](t, rec)
	require.NotNil(t, booking.SelectedStylist)
	assert.Equal(t, "stylist-1", booking.SelectedStylist.ID)
	require.NotNil(t, booking.SelectedTime)
	assert.Equal(t, "10:00", *booking.SelectedTime)

	rec = s.do(t, http.MethodPut, "/api/v1/booking/datetime", vid, SelectDateTimeRequest{Date: "2026-03-20", Time: "late"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/booking", vid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.BookingState](t, rec).SelectedServices)
}

func TestCheckout_IncompleteStepReturnsFields(t *testing.T) {
	s := newTestServer(t)
	vid := uuid.NewString()

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/next", vid, KindRequest{Kind: domain.KindProducts})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "step_incomplete", resp.Code)
	assert.Contains(t, resp.Fields, "email")
}

func TestCheckout_ProductOrderForSignedInVisitor(t *testing.T) {
	s := newTestServer(t)
	vid := uuid.NewString()

	rec := s.do(t, http.MethodGet, "/api/v1/orders", vid, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", vid, domain.Registration{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Password: "Blueberry!2026",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decode[RegisterResponse](t, rec).Session.IsAuthenticated)

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items", vid, AddItemRequest{ProductID: "blueberry-revival-shampoo", Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/checkout/personal", vid, domain.PersonalInfo{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Phone: "5551234567",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/checkout/next", vid, KindRequest{Kind: domain.KindProducts})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/v1/checkout/billing", vid, domain.BillingInfo{
		Address1: "Av. Reforma 222", City: "Ciudad de Mexico", State: "CDMX", PostalCode: "06600", Country: "Mexico",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/checkout/next", vid, KindRequest{Kind: domain.KindProducts})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/v1/checkout/payment", vid, map[string]any{
		"paymentMethod": "credit-card",
		"cardNumber":    "4242424242424242",
		"cardExpiry":    "12/29",
		"cardCvc":       "123",
		"nameOnCard":    "Ana Lopez",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "4242424242424242")
	assert.Equal(t, "4242", decode[domain.CheckoutState](t, rec).CardLast4)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/next", vid, KindRequest{Kind: domain.KindProducts})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/confirm", vid, KindRequest{Kind: domain.KindProducts})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "terms_not_accepted", decode[ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPut, "/api/v1/checkout/terms", vid, TermsRequest{AcceptedTerms: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/confirm", vid, KindRequest{Kind: domain.KindProducts})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conf := decode[domain.Confirmation](t, rec)
	assert.Equal(t, "PLACED", conf.Status)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", vid, nil)
	assert.Empty(t, decode[domain.CartState](t, rec).Items)

	rec = s.do(t, http.MethodGet, "/api/v1/orders", vid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListOrdersResponse](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, conf.OrderID, list.Orders[0].ID.String())
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	vid := uuid.NewString()

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", vid, domain.Registration{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Password: "weak",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "password")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", vid, domain.Registration{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Password: "Blueberry!2026",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", vid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.SessionState](t, rec).IsAuthenticated)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", vid, map[string]any{
		"email": "ana@example.com", "password": "Wrong!2026x",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", vid, map[string]any{
		"email": "ana@example.com", "password": "Blueberry!2026", "rememberMe": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[domain.SessionState](t, rec)
	assert.True(t, session.IsAuthenticated)
	assert.Equal(t, "ana@example.com", session.RememberEmail)

	rec = s.do(t, http.MethodPut, "/api/v1/auth/reward-points", vid, RewardPointsRequest{Points: 1600})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1600, decode[domain.SessionState](t, rec).User.RewardPoints)

	rec = s.do(t, http.MethodGet, "/api/v1/customer", vid, nil)
	assert.Equal(t, domain.TierGold, decode[domain.CustomerState](t, rec).RewardTier)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/refresh", vid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1600, decode[domain.SessionState](t, rec).User.RewardPoints)
}

func TestAuthRoutes_RefreshWithoutSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/refresh", uuid.NewString(), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerRoutes(t *testing.T) {
	s := newTestServer(t)
	vid := uuid.NewString()

	rec := s.do(t, http.MethodPost, "/api/v1/customer/favorites/blowout", vid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"blowout"}, decode[domain.CustomerState](t, rec).Preferences.FavoriteServices)

	rec = s.do(t, http.MethodPost, "/api/v1/customer/favorites/no-such-service", vid, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/customer/preferences", vid, map[string]any{
		"preferredStylist":        "stylist-3",
		"communicationPreference": "sms",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	prefs := decode[domain.CustomerState](t, rec).Preferences
	require.NotNil(t, prefs.PreferredStylist)
	assert.Equal(t, "stylist-3", *prefs.PreferredStylist)
	assert.Equal(t, domain.CommunicationSMS, prefs.CommunicationPreference)

	rec = s.do(t, http.MethodPut, "/api/v1/customer/preferences", vid, map[string]any{
		"communicationPreference": "pigeon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/customer/favorites/blowout", vid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.CustomerState](t, rec).Preferences.FavoriteServices)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/products", "", nil)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{route="/api/v1/products",status="200"} 1`)
}
