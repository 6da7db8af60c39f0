package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/daterange"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) BumpTokenVersion(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]entity.Product)
	return ps, args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	args := m.Called(ctx, params)
	ps, _ := args.Get(0).([]entity.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]string)
	return cs, args.Error(1)
}

func (m *mockProductRepo) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]entity.Product)
	return ps, args.Error(1)
}

func (m *mockProductRepo) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepo) AtomicIncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	return m.Called(ctx, id, amount).Error(0)
}

func (m *mockProductRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	return m.Called(ctx, increments).Error(0)
}

type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*entity.Customer)
	return c, args.Error(1)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCustomerRepo) List(ctx context.Context, params *repository.CustomerFilterParams) ([]entity.Customer, int64, error) {
	args := m.Called(ctx, params)
	cs, _ := args.Get(0).([]entity.Customer)
	return cs, args.Get(1).(int64), args.Error(2)
}

func (m *mockCustomerRepo) AdjustUdhar(ctx context.Context, id uuid.UUID, delta int64) (bool, error) {
	args := m.Called(ctx, id, delta)
	return args.Bool(0), args.Error(1)
}

func (m *mockCustomerRepo) TotalUdhar(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetWithCart(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) FindOpenCart(ctx context.Context, customerID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, customerID)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderRepo) List(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	args := m.Called(ctx, params)
	os, _ := args.Get(0).([]entity.Order)
	return os, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) IDsByCustomer(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, customerID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *mockOrderRepo) ProductInOpenCart(ctx context.Context, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) ListAbandonedCarts(ctx context.Context, idleSince time.Time) ([]entity.Order, error) {
	args := m.Called(ctx, idleSince)
	os, _ := args.Get(0).([]entity.Order)
	return os, args.Error(1)
}

type mockOrderItemRepo struct{ mock.Mock }

func (m *mockOrderItemRepo) Create(ctx context.Context, item *entity.OrderItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockOrderItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderItemRepo) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

type mockTransactionRepo struct{ mock.Mock }

func (m *mockTransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*entity.Transaction)
	return t, args.Error(1)
}

func (m *mockTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTransactionRepo) List(ctx context.Context, params *repository.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	args := m.Called(ctx, params)
	ts, _ := args.Get(0).([]entity.Transaction)
	return ts, args.Get(1).(int64), args.Error(2)
}

func (m *mockTransactionRepo) Sum(ctx context.Context, params *repository.TransactionFilterParams) (int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(int64), args.Error(1)
}

type mockReportRepo struct{ mock.Mock }

func (m *mockReportRepo) ProductSales(ctx context.Context, productID uuid.UUID, rng *daterange.Range) (int64, int64, error) {
	args := m.Called(ctx, productID, rng)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockReportRepo) SalesSummary(ctx context.Context, granularity string, rng *daterange.Range, tz string) ([]entity.SalesBucket, error) {
	args := m.Called(ctx, granularity, rng, tz)
	bs, _ := args.Get(0).([]entity.SalesBucket)
	return bs, args.Error(1)
}

func (m *mockReportRepo) LedgerTotals(ctx context.Context, rng *daterange.Range) (*entity.LedgerTotals, error) {
	args := m.Called(ctx, rng)
	t, _ := args.Get(0).(*entity.LedgerTotals)
	return t, args.Error(1)
}

func (m *mockReportRepo) BilledOrderCount(ctx context.Context, rng *daterange.Range) (int64, error) {
	args := m.Called(ctx, rng)
	return args.Get(0).(int64), args.Error(1)
}

// repos bundles the mocks behind a RepositoryFactory.
type repos struct {
	users        *mockUserRepo
	products     *mockProductRepo
	customers    *mockCustomerRepo
	orders       *mockOrderRepo
	items        *mockOrderItemRepo
	transactions *mockTransactionRepo
	reports      *mockReportRepo
}

func newRepos() *repos {
	return &repos{
		users:        new(mockUserRepo),
		products:     new(mockProductRepo),
		customers:    new(mockCustomerRepo),
		orders:       new(mockOrderRepo),
		items:        new(mockOrderItemRepo),
		transactions: new(mockTransactionRepo),
		reports:      new(mockReportRepo),
	}
}

func (r *repos) Products() repository.ProductRepository         { return r.products }
func (r *repos) Customers() repository.CustomerRepository       { return r.customers }
func (r *repos) Orders() repository.OrderRepository             { return r.orders }
func (r *repos) OrderItems() repository.OrderItemRepository     { return r.items }
func (r *repos) Transactions() repository.TransactionRepository { return r.transactions }
func (r *repos) Users() repository.UserRepository               { return r.users }

func (r *repos) assertExpectations(t mock.TestingT) {
	r.users.AssertExpectations(t)
	r.products.AssertExpectations(t)
	r.customers.AssertExpectations(t)
	r.orders.AssertExpectations(t)
	r.items.AssertExpectations(t)
	r.transactions.AssertExpectations(t)
	r.reports.AssertExpectations(t)
}

// fakeTxManager runs the callback against the mocks and counts outcomes.
type fakeTxManager struct {
	repos     *repos
	commits   int
	rollbacks int
}

func (f *fakeTxManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	if err := fn(f.repos); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

// memStore is an in-memory ObjectStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, prefix, name string, data []byte, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[prefix+name] = data
	return nil
}

func (s *memStore) Delete(_ context.Context, prefix, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, prefix+name)
	return nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// fakeSpooler records submitted jobs.
type fakeSpooler struct {
	jobs [][]byte
	err  error
}

func (f *fakeSpooler) Submit(_ string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, data)
	return nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
