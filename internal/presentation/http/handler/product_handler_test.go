package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductRouter(products *stubProducts) *gin.Engine {
	svc := service.NewProductService(nil, products, nil, nil, time.UTC)
	h := NewProductHandler(svc)

	router := gin.New()
	router.Use(asUser(uuid.New(), "admin"))
	router.GET("/products", h.List)
	router.GET("/products/:id", h.Get)
	router.GET("/categories", h.Categories)
	router.POST("/products", h.Create)
	return router
}

func TestProductGet(t *testing.T) {
	id := uuid.New()
	products := &stubProducts{products: map[uuid.UUID]*entity.Product{
		id: {ID: id, Name: "Tea", Price: 25000, StockQty: 4, LowStockAlert: 5},
	}}
	router := newProductRouter(products)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+id.String(), nil))
		require.Equal(t, http.StatusOK, w.Code)

		var product map[string]interface{}
		dataField(t, w, "product", &product)
		assert.Equal(t, "Tea", product["name"])
		assert.Equal(t, 250.0, product["price"])
		assert.Equal(t, true, product["lowStock"])
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid product ID", decode(t, w).Message)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductList(t *testing.T) {
	id := uuid.New()
	products := &stubProducts{products: map[uuid.UUID]*entity.Product{
		id: {ID: id, Name: "Tea", Category: "Drinks"},
	}}
	router := newProductRouter(products)

	t.Run("unpaged", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?search=te&category=Drinks", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var list []map[string]interface{}
		dataField(t, w, "products", &list)
		assert.Len(t, list, 1)
		assert.Nil(t, products.lastFilter.Pagination)
		assert.Equal(t, "te", products.lastFilter.Search)
		assert.Equal(t, "Drinks", products.lastFilter.Category)

		var data map[string]interface{}
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
		assert.NotContains(t, data, "pagination")
	})

	t.Run("paged", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?page=2&per_page=500", nil))
		require.Equal(t, http.StatusOK, w.Code)

		require.NotNil(t, products.lastFilter.Pagination)
		assert.Equal(t, 2, products.lastFilter.Pagination.Page)
		assert.Equal(t, 100, products.lastFilter.Pagination.PerPage)

		var page map[string]interface{}
		dataField(t, w, "pagination", &page)
		assert.Equal(t, 2.0, page["currentPage"])
		assert.Equal(t, 1.0, page["total"])
	})
}

func TestProductCategories(t *testing.T) {
	router := newProductRouter(&stubProducts{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/categories", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var categories []string
	dataField(t, w, "categories", &categories)
	assert.Equal(t, []string{"Drinks", "Snacks"}, categories)
}

func TestProductCreateValidation(t *testing.T) {
	router := newProductRouter(&stubProducts{})

	cases := []struct {
		name string
		body string
		code int
	}{
		{"negative discount", `{"name":"Tea","price":250,"discount":-1,"stockQty":1}`, http.StatusBadRequest},
		{"discount above price", `{"name":"Tea","price":250,"discount":300,"stockQty":1}`, http.StatusUnprocessableEntity},
		{"blank name", `{"name":"   ","price":250}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code, w.Body.String())
			assert.False(t, decode(t, w).Success)
		})
	}
}
