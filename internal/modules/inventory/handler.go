package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/inventory-api/internal/httpx"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct {
	service Service
	log     *slog.Logger
}

func NewHandler(service Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.listProducts) // ?q=...
		r.Post("/", h.addProduct)
		r.Get("/low-stock", h.lowStock)
		r.Get("/{id}", h.getProduct)
		r.Patch("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
	r.Route("/api/v1/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers) // ?q=...
		r.Post("/", h.addSupplier)
		r.Get("/{id}", h.getSupplier)
		r.Patch("/{id}", h.updateSupplier)
		r.Delete("/{id}", h.deleteSupplier)
	})
	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Get("/", h.listTransactions) // ?type=sale|purchase&q=...&productId=...
		r.Post("/", h.addTransaction)
	})
	r.Get("/api/v1/dashboard", h.dashboard)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// fail maps service errors to a status code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrInvalidInput) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.ErrorContext(r.Context(), "inventory request failed", "path", r.URL.Path, "error", err)
	httpx.Error(w, http.StatusInternalServerError, "internal error")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// ---- Products ----

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req NewProduct
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.AddProduct(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStockProducts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if p == nil {
		httpx.Error(w, http.StatusNotFound, "product not found")
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var patch ProductPatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if p == nil {
		httpx.Error(w, http.StatusNotFound, "product not found")
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	deleted, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		httpx.Error(w, http.StatusNotFound, "product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Suppliers ----

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, suppliers)
}

func (h *Handler) addSupplier(w http.ResponseWriter, r *http.Request) {
	var req NewSupplier
	if !decode(w, r, &req) {
		return
	}
	s, err := h.service.AddSupplier(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, s)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if s == nil {
		httpx.Error(w, http.StatusNotFound, "supplier not found")
		return
	}
	count, err := h.service.CountProductsBySupplier(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, struct {
		*Supplier
		ProductCount int `json:"productCount"`
	}{s, count})
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var patch SupplierPatch
	if !decode(w, r, &patch) {
		return
	}
	s, err := h.service.UpdateSupplier(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if s == nil {
		httpx.Error(w, http.StatusNotFound, "supplier not found")
		return
	}
	httpx.Respond(w, http.StatusOK, s)
}

// deleteSupplier refuses to remove a supplier that products still reference.
// The store itself does not enforce this.
func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := h.service.CountProductsBySupplier(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if count > 0 {
		httpx.Error(w, http.StatusConflict, fmt.Sprintf(
			"Cannot delete supplier. %d products are associated with this supplier.", count))
		return
	}
	deleted, err := h.service.DeleteSupplier(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		httpx.Error(w, http.StatusNotFound, "supplier not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Transactions ----

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := TransactionFilter{Type: TransactionType(q.Get("type")), Query: q.Get("q")}
	if f.Type == "all" {
		f.Type = ""
	}
	if f.Type != "" && !f.Type.Valid() {
		httpx.Error(w, http.StatusBadRequest, `type must be "sale", "purchase" or "all"`)
		return
	}
	if v := q.Get("productId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid productId %q", v))
			return
		}
		f.ProductID = id
	}
	transactions, err := h.service.ListTransactions(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, transactions)
}

func (h *Handler) addTransaction(w http.ResponseWriter, r *http.Request) {
	var req NewTransaction
	if !decode(w, r, &req) {
		return
	}
	t, err := h.service.AddTransaction(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, t)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, sum)
}
