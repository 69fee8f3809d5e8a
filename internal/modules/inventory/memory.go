package inventory

import (
	"context"
	"sync"
)

// memoryRepository keeps all three collections in insertion order behind one
// mutex. Reads hand out copies so callers never alias stored records.
type memoryRepository struct {
	mu sync.RWMutex

	products     []Product
	suppliers    []Supplier
	transactions []Transaction

	nextProductID     int64
	nextSupplierID    int64
	nextTransactionID int64
}

// NewMemoryRepository returns an empty in-process backing.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) productIndex(id int64) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *memoryRepository) supplierIndex(id int64) int {
	for i := range r.suppliers {
		if r.suppliers[i].ID == id {
			return i
		}
	}
	return -1
}

// ---- Product ----

func (r *memoryRepository) CreateProduct(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextProductID++
	p.ID = r.nextProductID
	r.products = append(r.products, *p)
	return nil
}

func (r *memoryRepository) GetProduct(_ context.Context, id int64) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.productIndex(id)
	if i < 0 {
		return nil, nil
	}
	p := r.products[i]
	return &p, nil
}

func (r *memoryRepository) ListProducts(_ context.Context) ([]*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Product, 0, len(r.products))
	for _, p := range r.products {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

func (r *memoryRepository) UpdateProduct(_ context.Context, id int64, patch ProductPatch) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.productIndex(id)
	if i < 0 {
		return nil, nil
	}
	patch.apply(&r.products[i])
	p := r.products[i]
	return &p, nil
}

func (r *memoryRepository) DeleteProduct(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.productIndex(id)
	if i < 0 {
		return false, nil
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return true, nil
}

// ---- Supplier ----

func (r *memoryRepository) CreateSupplier(_ context.Context, s *Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSupplierID++
	s.ID = r.nextSupplierID
	r.suppliers = append(r.suppliers, *s)
	return nil
}

func (r *memoryRepository) GetSupplier(_ context.Context, id int64) (*Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.supplierIndex(id)
	if i < 0 {
		return nil, nil
	}
	s := r.suppliers[i]
	return &s, nil
}

func (r *memoryRepository) ListSuppliers(_ context.Context) ([]*Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

func (r *memoryRepository) UpdateSupplier(_ context.Context, id int64, patch SupplierPatch) (*Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.supplierIndex(id)
	if i < 0 {
		return nil, nil
	}
	patch.apply(&r.suppliers[i])
	s := r.suppliers[i]
	return &s, nil
}

func (r *memoryRepository) DeleteSupplier(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.supplierIndex(id)
	if i < 0 {
		return false, nil
	}
	r.suppliers = append(r.suppliers[:i], r.suppliers[i+1:]...)
	return true, nil
}

// ---- Transaction ----

func (r *memoryRepository) CreateTransaction(_ context.Context, t *Transaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTransactionID++
	t.ID = r.nextTransactionID
	r.transactions = append(r.transactions, *t)

	i := r.productIndex(t.ProductID)
	if i < 0 {
		return false, nil
	}
	r.products[i].Quantity += stockDelta(t.Type, t.Quantity)
	return true, nil
}

func (r *memoryRepository) ListTransactions(_ context.Context) ([]*Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Transaction, 0, len(r.transactions))
	for _, t := range r.transactions {
		t := t
		out = append(out, &t)
	}
	return out, nil
}
