package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a shared in-memory backing store for the stub repositories
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
	orders   map[uuid.UUID]*order.Order
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]*catalog.Product),
		orders:   make(map[uuid.UUID]*order.Order),
	}
}

type stubProductRepo struct{ store *memStore }

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p, ok := r.store.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	return r.FindByIDsForUpdate(ctx, ids)
}

func (r *stubProductRepo) FindByIDsForUpdate(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductRepo) FindAll(context.Context, shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *p
	r.store.products[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Count(context.Context, shared.Filter) (int64, error) { return 0, nil }

var _ catalog.ProductRepository = (*stubProductRepo)(nil)

type stubOrderRepo struct{ store *memStore }

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if o, ok := r.store.orders[id]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepo) FindByUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []order.Order
	for _, o := range r.store.orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *stubOrderRepo) FindAll(_ context.Context, filter shared.Filter) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []order.Order
	for _, o := range r.store.orders {
		if status, ok := filter.Filters["status"]; ok && o.Status != status.(order.Status) {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *stubOrderRepo) FindDueForDelivery(_ context.Context, cutoff time.Time) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []order.Order
	for _, o := range r.store.orders {
		if o.Status == order.StatusPaid && o.EstimatedDelivery.Before(cutoff) {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *stubOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *o
	r.store.orders[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != o.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	clone := *o
	r.store.orders[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	orders, err := r.FindAll(ctx, filter)
	return int64(len(orders)), err
}

func (r *stubOrderRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	orders, err := r.FindByUser(ctx, userID, shared.DefaultFilter())
	return int64(len(orders)), err
}

var _ order.Repository = (*stubOrderRepo)(nil)

// stubScope runs the unit of work directly against the shared store
type stubScope struct{ store *memStore }

func (s *stubScope) Execute(_ context.Context, fn func(apporder.TransactionalRepositories) error) error {
	return fn(s)
}

func (s *stubScope) ProductRepo() catalog.ProductRepository { return &stubProductRepo{store: s.store} }
func (s *stubScope) OrderRepo() order.Repository            { return &stubOrderRepo{store: s.store} }

var _ apporder.TransactionScope = (*stubScope)(nil)

// testServer bundles the wired engine with its backing store and token issuer
type testServer struct {
	engine *gin.Engine
	store  *memStore
	jwt    *auth.JWTService
}

func (ts *testServer) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	token, err := ts.jwt.GenerateToken(userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) request(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

// fixedEstimator returns an estimator that always lands on eta
func fixedEstimator(eta time.Time) apporder.DeliveryEstimator {
	return apporder.DeliveryEstimator{
		MinDays: 0,
		MaxDays: 0,
		Now:     func() time.Time { return eta },
		RandInt: func(int) int { return 0 },
	}
}

func newTestServer(t *testing.T, eta time.Time) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	scope := &stubScope{store: store}
	orderRepo := &stubOrderRepo{store: store}
	logger := zap.NewNop()

	checkoutService := apporder.NewCheckoutService(scope, fixedEstimator(eta), logger)
	statusService := apporder.NewStatusService(scope, logger)
	queryService := apporder.NewQueryService(orderRepo)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret: "test-secret-at-least-32-characters!!",
		Issuer: "storefront-test",
	})

	orderHandler := NewOrderHandler(checkoutService, queryService)
	adminHandler := NewAdminOrderHandler(queryService, statusService)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1", middleware.JWTAuthMiddleware(jwtService, logger))
	orderHandler.RegisterRoutes(api)
	admin := api.Group("/admin", middleware.RequireRole(auth.RoleAdmin))
	adminHandler.RegisterRoutes(admin)

	return &testServer{engine: engine, store: store, jwt: jwtService}
}

// seedProduct adds a product with the given price and stock to the store
func (ts *testServer) seedProduct(t *testing.T, name string, price float64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, valueobject.NewMoneyUSDFromFloat(price), stock)
	require.NoError(t, err)
	ts.store.mu.Lock()
	ts.store.products[p.ID] = p
	ts.store.mu.Unlock()
	return p
}
