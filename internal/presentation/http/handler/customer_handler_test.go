package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerRouter(customers *stubCustomers) *gin.Engine {
	h := NewCustomerHandler(service.NewCustomerService(nil, customers, nil))

	router := gin.New()
	router.Use(asUser(uuid.New(), "user"))
	router.GET("/customers", h.List)
	router.PUT("/returnUdhar/:customerId", h.ReturnUdhar)
	return router
}

func TestCustomerListWithUdhar(t *testing.T) {
	customers := &stubCustomers{}
	router := newCustomerRouter(customers)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/customers?withUdhar=true&search=ali", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, customers.lastFilter.WithUdhar)
	assert.Equal(t, "ali", customers.lastFilter.Search)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/customers", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, customers.lastFilter.WithUdhar)
}

func TestReturnUdharValidation(t *testing.T) {
	id := uuid.New()
	router := newCustomerRouter(&stubCustomers{customers: map[uuid.UUID]*entity.Customer{
		id: {ID: id, Name: "Ali", Udhar: 50000},
	}})

	cases := []struct {
		name string
		path string
		body string
		code int
	}{
		{"zero amount", "/returnUdhar/" + id.String(), `{"returnUdhar":0}`, http.StatusBadRequest},
		{"negative amount", "/returnUdhar/" + id.String(), `{"returnUdhar":-5}`, http.StatusBadRequest},
		{"bad id", "/returnUdhar/abc", `{"returnUdhar":10}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}
