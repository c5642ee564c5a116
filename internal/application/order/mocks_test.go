package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of order.Repository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindDueForDelivery(ctx context.Context, cutoff time.Time) ([]order.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

var _ order.Repository = (*MockOrderRepository)(nil)

// ==================== In-memory fakes ====================
//
// The fakes back the transactional flows: they store copies, so mutations to
// a loaded aggregate only become visible once Save/UpdateStatus is called,
// mirroring how a real transaction isolates uncommitted changes.

type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
	orders   map[uuid.UUID]order.Order
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]catalog.Product),
		orders:   make(map[uuid.UUID]order.Order),
	}
}

func (s *memStore) putProduct(p *catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
}

func (s *memStore) productStock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) putOrder(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) orderStatus(id uuid.UUID) order.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id].Status
}

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	return r.FindByIDsForUpdate(ctx, ids)
}

func (r *fakeProductRepo) FindByIDsForUpdate(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.products)), nil
}

var _ catalog.ProductRepository = (*fakeProductRepo)(nil)

type fakeOrderRepo struct {
	store   *memStore
	saveErr error
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	o.Items = append([]order.Item(nil), o.Items...)
	return &o, nil
}

func (r *fakeOrderRepo) FindByUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]order.Order, 0)
	for _, o := range r.store.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]order.Order, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) FindDueForDelivery(_ context.Context, cutoff time.Time) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]order.Order, 0)
	for _, o := range r.store.orders {
		if o.Status == order.StatusPaid && o.EstimatedDelivery.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, o *order.Order) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *o
	stored.Items = append([]order.Item(nil), o.Items...)
	r.store.orders[o.ID] = stored
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, o *order.Order) error {
	return r.Save(ctx, o)
}

func (r *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.orders)), nil
}

func (r *fakeOrderRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, o := range r.store.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

var _ order.Repository = (*fakeOrderRepo)(nil)

// serializedScope runs each Execute under a mutex, giving the fakes the same
// one-at-a-time guarantee row locks give concurrent checkouts in production.
type serializedScope struct {
	mu          sync.Mutex
	productRepo catalog.ProductRepository
	orderRepo   order.Repository
}

func newSerializedScope(store *memStore) *serializedScope {
	return &serializedScope{
		productRepo: &fakeProductRepo{store: store},
		orderRepo:   &fakeOrderRepo{store: store},
	}
}

func (s *serializedScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

func (s *serializedScope) ProductRepo() catalog.ProductRepository { return s.productRepo }
func (s *serializedScope) OrderRepo() order.Repository            { return s.orderRepo }

var _ TransactionScope = (*serializedScope)(nil)
var _ TransactionalRepositories = (*serializedScope)(nil)
