package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func dataField(t *testing.T, w *httptest.ResponseRecorder, key string, v interface{}) {
	t.Helper()
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	raw, ok := data[key]
	require.True(t, ok, "missing data.%s in %s", key, w.Body.String())
	require.NoError(t, json.Unmarshal(raw, v))
}

// asUser stands in for the auth middleware
func asUser(id uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("user_role", role)
		c.Next()
	}
}

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemUsers(users ...*entity.User) *memUsers {
	m := &memUsers{users: map[uuid.UUID]*entity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Update(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memUsers) List(context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUsers) BumpTokenVersion(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.TokenVersion++
	}
	return nil
}

func (m *memUsers) TouchLastLogin(context.Context, uuid.UUID) error { return nil }

// stubProducts implements only what the product handler tests reach;
// any other call panics on the nil embedded interface.
type stubProducts struct {
	repository.ProductRepository
	products   map[uuid.UUID]*entity.Product
	lastFilter *repository.ProductFilterParams
	restored   map[uuid.UUID]int
}

func (s *stubProducts) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	return s.products[id], nil
}

func (s *stubProducts) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProducts) AtomicIncrementQuantity(_ context.Context, id uuid.UUID, amount int) error {
	if s.restored == nil {
		s.restored = map[uuid.UUID]int{}
	}
	s.restored[id] += amount
	return nil
}

func (s *stubProducts) List(_ context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	s.lastFilter = params
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (s *stubProducts) Categories(context.Context) ([]string, error) {
	return []string{"Drinks", "Snacks"}, nil
}

type stubCustomers struct {
	repository.CustomerRepository
	customers  map[uuid.UUID]*entity.Customer
	lastFilter *repository.CustomerFilterParams
}

func (s *stubCustomers) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	return s.customers[id], nil
}

func (s *stubCustomers) List(_ context.Context, params *repository.CustomerFilterParams) ([]entity.Customer, int64, error) {
	s.lastFilter = params
	return []entity.Customer{}, 0, nil
}

type memLedger struct {
	repository.TransactionRepository
	created []*entity.Transaction
}

func (m *memLedger) Create(_ context.Context, tx *entity.Transaction) error {
	tx.ID = uuid.New()
	m.created = append(m.created, tx)
	return nil
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) Put(_ context.Context, prefix, name string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[prefix+name] = data
	return nil
}

func (m *memObjects) Delete(_ context.Context, prefix, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, prefix+name)
	return nil
}

// topField reads a payload key mirrored next to success and message
func topField(t *testing.T, w *httptest.ResponseRecorder, key string, v interface{}) {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	raw, ok := body[key]
	require.True(t, ok, "missing top-level %s in %s", key, w.Body.String())
	require.NoError(t, json.Unmarshal(raw, v))
}
