package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/inventory-api/internal/logger"
)

func newTestRouter(t *testing.T) (*chi.Mux, Service) {
	t.Helper()
	svc := newTestService()
	r := chi.NewRouter()
	NewHandler(svc, logger.Discard()).RegisterRoutes(r)
	return r, svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/products",
		`{"name":"Office Chair","category":"Furniture","quantity":12,"price":"249.99","reorderLevel":5,"supplierId":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	rec = do(t, r, http.MethodPatch, "/api/v1/products/1", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/products/low-stock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var low []Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &low))
	require.Len(t, low, 1)
	assert.Equal(t, 3, low[0].Quantity)

	rec = do(t, r, http.MethodDelete, "/api/v1/products/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/products/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductErrorsOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/products/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/products", `{"name":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/products", `{`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPatch, "/api/v1/products/9", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/v1/products/9", "").Code)
}

func TestSupplierDeleteRejectedWhileReferenced(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()

	sup, err := svc.AddSupplier(ctx, NewSupplier{Name: "Tech Solutions Inc."})
	require.NoError(t, err)
	p, err := svc.AddProduct(ctx, NewProduct{Name: "Headphones", SupplierID: sup.ID})
	require.NoError(t, err)

	rec := do(t, r, http.MethodGet, "/api/v1/suppliers/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"productCount":1`)

	rec = do(t, r, http.MethodDelete, "/api/v1/suppliers/1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 products are associated")

	_, err = svc.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)

	rec = do(t, r, http.MethodDelete, "/api/v1/suppliers/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/v1/suppliers/1", "").Code)
}

func TestTransactionsOverHTTP(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()
	p, err := svc.AddProduct(ctx, NewProduct{Name: "Coffee Beans", Quantity: 5, ReorderLevel: 15})
	require.NoError(t, err)

	rec := do(t, r, http.MethodPost, "/api/v1/transactions",
		`{"productId":1,"type":"purchase","quantity":20,"amount":"499.80","notes":"Weekly inventory restock"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/v1/transactions", `{"productId":1,"type":"gift","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	got, _ := svc.GetProduct(ctx, p.ID)
	assert.Equal(t, 25, got.Quantity)

	rec = do(t, r, http.MethodGet, "/api/v1/transactions?type=purchase&productId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, Purchase, txs[0].Type)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/transactions?type=all", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/transactions?type=refund", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/transactions?productId=x", "").Code)
}

func TestDashboardOverHTTP(t *testing.T) {
	r, svc := newTestRouter(t)
	require.NoError(t, svc.Seed(context.Background()))

	rec := do(t, r, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum struct {
		TotalProducts int    `json:"totalProducts"`
		LowStockCount int    `json:"lowStockCount"`
		NetProfit     string `json:"netProfit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 3, sum.TotalProducts)
	assert.Equal(t, 1, sum.LowStockCount)
	assert.Equal(t, "-99.94", sum.NetProfit)
}
