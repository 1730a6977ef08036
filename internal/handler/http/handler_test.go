package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
	"github.com/Mousaahmad63636/spotlymobile/internal/repository/memory"
	"github.com/Mousaahmad63636/spotlymobile/internal/service"
	"github.com/Mousaahmad63636/spotlymobile/internal/session"
	apperrors "github.com/Mousaahmad63636/spotlymobile/pkg/errors"
	"github.com/Mousaahmad63636/spotlymobile/pkg/health"
	"github.com/Mousaahmad63636/spotlymobile/pkg/httputil"
	"github.com/Mousaahmad63636/spotlymobile/pkg/logger"
)

// mockBackend stands in for the Spotly API behind both services.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(domain.User), args.Error(2)
}

func (m *mockBackend) Profile(ctx context.Context) (domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockBackend) RegisterDeviceToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockBackend) Orders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockBackend) Order(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockBackend) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(domain.Order), args.Error(1)
}

type harness struct {
	router   http.Handler
	backend  *mockBackend
	sessions *session.Store
	cache    *memory.OrderCache
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.New("panel-test", "error")
	backend := new(mockBackend)
	sessions := session.NewStore()
	cache := memory.New()

	auth := service.NewAuth(backend, sessions, log)
	orders := service.NewOrders(backend, cache, log)
	router := NewRouter(auth, orders, sessions, health.NewHandler(), "https://api.spotlylb.com/uploads", log)

	return &harness{router: router, backend: backend, sessions: sessions, cache: cache}
}

func (h *harness) loginAsAdmin() {
	h.sessions.Set("jwt-test", domain.User{ID: "u1", Name: "Admin", Role: "admin"})
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func strp(s string) *string { return &s }

func seedOrder(id, status, createdAt string) domain.Order {
	return domain.Order{ID: id, OrderNumber: "ORD-" + id, Status: strp(status), CreatedAt: createdAt}
}

func TestLoginSuccess(t *testing.T) {
	h := newHarness(t)
	h.backend.On("Login", mock.Anything, "admin@spotly.shop", "pw").
		Return("jwt-1", domain.User{ID: "u1", Role: "admin"}, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/session", map[string]string{
		"email": "admin@spotly.shop", "password": "pw",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, h.sessions.LoggedIn())
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/v1/session", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Fields, "email")
	assert.Contains(t, resp.Error.Fields, "password")
}

func TestLoginNonAdminForbidden(t *testing.T) {
	h := newHarness(t)
	h.backend.On("Login", mock.Anything, "c@x.y", "pw").
		Return("jwt-2", domain.User{ID: "u2", Role: "customer"}, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/session", map[string]string{
		"email": "c@x.y", "password": "pw",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, h.sessions.LoggedIn())
}

func TestOrdersRequireSession(t *testing.T) {
	h := newHarness(t)
	for _, probe := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/orders/refresh"},
		{http.MethodGet, "/api/v1/orders/o1"},
		{http.MethodGet, "/api/v1/dashboard"},
	} {
		rec := h.do(t, probe.method, probe.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", probe.method, probe.path)
	}
}

func TestListOrders(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{
		seedOrder("a", "pending", "2025-03-01T10:00:00.000Z"),
		seedOrder("b", "shipped", "2025-03-02T10:00:00.000Z"),
	})

	rec := h.do(t, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Data.Total)
	require.Len(t, resp.Data.Orders, 2)
	assert.Equal(t, "b", resp.Data.Orders[0].ID, "newest first by default")
}

func TestSetFilterPersistsAcrossRefresh(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{
		seedOrder("a", "pending", "2025-03-01T10:00:00.000Z"),
		seedOrder("b", "shipped", "2025-03-02T10:00:00.000Z"),
	})

	rec := h.do(t, http.MethodPut, "/api/v1/orders/filter", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Orders, 1)
	assert.Equal(t, "b", resp.Data.Orders[0].ID)

	// A later full refresh re-applies the installed filter.
	h.backend.On("Orders", mock.Anything).Return([]domain.Order{
		seedOrder("a", "pending", "2025-03-01T10:00:00.000Z"),
		seedOrder("b", "shipped", "2025-03-02T10:00:00.000Z"),
		seedOrder("c", "shipped", "2025-03-03T10:00:00.000Z"),
	}, nil)

	rec = h.do(t, http.MethodPost, "/api/v1/orders/refresh", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Data.Total)
	require.Len(t, resp.Data.Orders, 2)
	assert.Equal(t, "c", resp.Data.Orders[0].ID)
}

func TestListOrdersFilterQueryParams(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{
		seedOrder("a", "pending", "2025-03-01T10:00:00.000Z"),
		seedOrder("b", "shipped", "2025-03-02T10:00:00.000Z"),
	})

	rec := h.do(t, http.MethodGet, "/api/v1/orders?status=pending&sort=oldest", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Orders, 1)
	assert.Equal(t, "a", resp.Data.Orders[0].ID)

	// Query criteria persist like the PUT endpoint's.
	rec = h.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Orders, 1)

	rec = h.do(t, http.MethodGet, "/api/v1/orders?status=returned", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetFilterValidation(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()

	rec := h.do(t, http.MethodPut, "/api/v1/orders/filter", map[string]string{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/v1/orders/filter", map[string]string{"date_from": "03/01/2025"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterDateToCoversWholeDay(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{
		seedOrder("late", "pending", "2025-03-05T23:30:00.000Z"),
		seedOrder("next", "pending", "2025-03-06T00:10:00.000Z"),
	})

	rec := h.do(t, http.MethodPut, "/api/v1/orders/filter", map[string]string{"date_to": "2025-03-05"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Orders, 1)
	assert.Equal(t, "late", resp.Data.Orders[0].ID)
}

func TestClearFilter(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{
		seedOrder("a", "pending", "2025-03-01T10:00:00.000Z"),
		seedOrder("b", "shipped", "2025-03-02T10:00:00.000Z"),
	})
	h.cache.SetFilter(domain.Filter{Status: domain.StatusShipped})

	rec := h.do(t, http.MethodDelete, "/api/v1/orders/filter", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, h.cache.Snapshot().Filtered, 2)
}

func TestGetOrderDetail(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{seedOrder("o1", "confirmed", "2025-03-01T10:00:00.000Z")})

	rec := h.do(t, http.MethodGet, "/api/v1/orders/o1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data DetailResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "o1", resp.Data.Order.ID)
	assert.Equal(t, []domain.Status{domain.StatusShipped, domain.StatusCancelled}, resp.Data.NextStatuses)
}

func TestGetOrderDetailLines(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()

	price := 25.0
	o := seedOrder("o1", "pending", "2025-03-01T10:00:00.000Z")
	o.Subtotal = 50
	promo := 10.0
	o.PromoDiscount = &promo
	o.Products = []domain.OrderProduct{
		{
			Product:  &domain.Product{Name: "Shirt", Price: 30, Images: []string{"shirt.jpg"}},
			Quantity: 2,
			Price:    &price,
		},
		{Quantity: 1}, // catalog entry deleted server-side
	}
	h.cache.Load([]domain.Order{o})

	rec := h.do(t, http.MethodGet, "/api/v1/orders/o1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data DetailResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Lines, 2)
	assert.Equal(t, "Shirt", resp.Data.Lines[0].Name)
	assert.Equal(t, 25.0, resp.Data.Lines[0].UnitPrice)
	assert.Equal(t, 50.0, resp.Data.Lines[0].LineTotal)
	assert.Equal(t, "https://api.spotlylb.com/uploads/shirt.jpg", resp.Data.Lines[0].ImageURL)
	assert.Empty(t, resp.Data.Lines[1].Name)
	assert.Zero(t, resp.Data.Lines[1].UnitPrice)
	assert.InDelta(t, 5.0, resp.Data.Discount, 1e-9)
}

func TestGetOrderNotCached(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()

	rec := h.do(t, http.MethodGet, "/api/v1/orders/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{seedOrder("o1", "pending", "2025-03-01T10:00:00.000Z")})

	confirmed := seedOrder("o1", "confirmed", "2025-03-01T10:00:00.000Z")
	h.backend.On("UpdateOrderStatus", mock.Anything, "o1", domain.StatusConfirmed).Return(confirmed, nil)
	h.backend.On("Order", mock.Anything, "o1").Return(confirmed, nil)

	rec := h.do(t, http.MethodPut, "/api/v1/orders/o1/status", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	cached, ok := h.cache.Get("o1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusConfirmed, cached.StatusCode())
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()

	rec := h.do(t, http.MethodPut, "/api/v1/orders/o1/status", map[string]string{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	h.backend.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusBackendConflict(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	h.cache.Load([]domain.Order{seedOrder("o1", "cancelled", "2025-03-01T10:00:00.000Z")})

	h.backend.On("UpdateOrderStatus", mock.Anything, "o1", domain.StatusConfirmed).
		Return(domain.Order{}, apperrors.Conflict("order already cancelled"))

	rec := h.do(t, http.MethodPut, "/api/v1/orders/o1/status", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()
	delivered := seedOrder("a", "delivered", "2025-03-01T10:00:00.000Z")
	delivered.TotalAmount = 80
	h.cache.Load([]domain.Order{delivered, seedOrder("b", "pending", "2025-03-02T10:00:00.000Z")})

	rec := h.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Dashboard `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.InDelta(t, 80.0, resp.Data.Revenue, 1e-9)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.loginAsAdmin()

	rec := h.do(t, http.MethodDelete, "/api/v1/session", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentSession(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h.loginAsAdmin()
	rec = h.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.User `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "u1", resp.Data.ID)
}

func TestHealthEndpointsOpen(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
