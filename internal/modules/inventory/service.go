package inventory

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Service is the single source of truth for products, suppliers and
// transactions. Missing ids never fail: lookups and updates return nil,
// deletes return false.
type Service interface {
	// Product operations
	AddProduct(ctx context.Context, in NewProduct) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, query string) ([]*Product, error)
	LowStockProducts(ctx context.Context) ([]*Product, error)

	// Supplier operations
	AddSupplier(ctx context.Context, in NewSupplier) (*Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, patch SupplierPatch) (*Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) (bool, error)
	GetSupplier(ctx context.Context, id int64) (*Supplier, error)
	ListSuppliers(ctx context.Context, query string) ([]*Supplier, error)
	CountProductsBySupplier(ctx context.Context, supplierID int64) (int, error)

	// Transaction operations (create-only)
	AddTransaction(ctx context.Context, in NewTransaction) (*Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error)

	Summary(ctx context.Context) (*Summary, error)
	Seed(ctx context.Context) error
}

// StockObserver is notified whenever a transaction adjusts stock.
type StockObserver interface {
	ObserveStockAdjustment(txType string)
}

// Option configures the service.
type Option func(*service)

// WithClock overrides time.Now for createdAt and transaction dates.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

// WithStockObserver hooks stock adjustment events, typically into metrics.
func WithStockObserver(o StockObserver) Option { return func(s *service) { s.observer = o } }

type service struct {
	repo     Repository
	now      func() time.Time
	log      *slog.Logger
	observer StockObserver
}

// NewService creates a new inventory service over the given backing.
func NewService(repo Repository, opts ...Option) Service {
	s := &service{
		repo: repo,
		now:  time.Now,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) AddProduct(ctx context.Context, in NewProduct) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := &Product{
		Name:         in.Name,
		Category:     in.Category,
		Quantity:     in.Quantity,
		Price:        in.Price,
		ReorderLevel: in.ReorderLevel,
		SupplierID:   in.SupplierID,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "product added", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if p == nil {
		s.log.DebugContext(ctx, "update on unknown product ignored", "product_id", id)
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, query string) ([]*Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products, nil
	}
	return slices.DeleteFunc(products, func(p *Product) bool {
		return !containsFold(p.Name, q) && !containsFold(p.Category, q)
	}), nil
}

func (s *service) LowStockProducts(ctx context.Context) ([]*Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(products, func(p *Product) bool { return !p.LowStock() }), nil
}

func (s *service) AddSupplier(ctx context.Context, in NewSupplier) (*Supplier, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sup := &Supplier{
		Name:         in.Name,
		Contact:      in.Contact,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		LeadTimeDays: in.LeadTimeDays,
	}
	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "supplier added", "supplier_id", sup.ID, "name", sup.Name)
	return sup, nil
}

func (s *service) UpdateSupplier(ctx context.Context, id int64, patch SupplierPatch) (*Supplier, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateSupplier(ctx, id, patch)
}

// DeleteSupplier does not look at referencing products; callers that need
// the "no supplier with products" rule check CountProductsBySupplier first.
func (s *service) DeleteSupplier(ctx context.Context, id int64) (bool, error) {
	return s.repo.DeleteSupplier(ctx, id)
}

func (s *service) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *service) ListSuppliers(ctx context.Context, query string) ([]*Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return suppliers, nil
	}
	return slices.DeleteFunc(suppliers, func(sup *Supplier) bool {
		return !containsFold(sup.Name, q) && !containsFold(sup.Contact, q) && !containsFold(sup.Email, q)
	}), nil
}

func (s *service) CountProductsBySupplier(ctx context.Context, supplierID int64) (int, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range products {
		if p.SupplierID == supplierID {
			n++
		}
	}
	return n, nil
}

// AddTransaction records t and applies its stock effect atomically. A
// transaction for an unknown product is still stored; only the effect is skipped.
func (s *service) AddTransaction(ctx context.Context, in NewTransaction) (*Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t := &Transaction{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Amount:    in.Amount,
		Date:      s.now().UTC(),
		Notes:     in.Notes,
	}
	applied, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return nil, err
	}
	if applied {
		if s.observer != nil {
			s.observer.ObserveStockAdjustment(string(t.Type))
		}
	} else {
		s.log.WarnContext(ctx, "transaction references unknown product, stock effect skipped",
			"transaction_id", t.ID, "product_id", t.ProductID)
	}
	s.log.InfoContext(ctx, "transaction recorded",
		"transaction_id", t.ID, "product_id", t.ProductID, "type", t.Type,
		"quantity", t.Quantity, "effect_applied", applied)
	return t, nil
}

// ListTransactions returns matching transactions newest first.
func (s *service) ListTransactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error) {
	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	var names map[int64]string
	if q != "" {
		products, err := s.repo.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		names = make(map[int64]string, len(products))
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	transactions = slices.DeleteFunc(transactions, func(t *Transaction) bool {
		if f.Type != "" && t.Type != f.Type {
			return true
		}
		if f.ProductID != 0 && t.ProductID != f.ProductID {
			return true
		}
		if q != "" && !containsFold(names[t.ProductID], q) && !containsFold(t.Notes, q) {
			return true
		}
		return false
	})
	slices.SortStableFunc(transactions, func(a, b *Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return transactions, nil
}

const recentTransactionCount = 5

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		TotalProducts:      len(products),
		TotalSuppliers:     len(suppliers),
		TotalRevenue:       decimal.Zero,
		TotalPurchases:     decimal.Zero,
		InventoryValue:     decimal.Zero,
		LowStockProducts:   []*Product{},
		RecentTransactions: transactions[:min(recentTransactionCount, len(transactions))],
	}
	for _, p := range products {
		if p.LowStock() {
			sum.LowStockProducts = append(sum.LowStockProducts, p)
		}
		sum.InventoryValue = sum.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	sum.LowStockCount = len(sum.LowStockProducts)
	for _, t := range transactions {
		switch t.Type {
		case Sale:
			sum.TotalRevenue = sum.TotalRevenue.Add(t.Amount)
		case Purchase:
			sum.TotalPurchases = sum.TotalPurchases.Add(t.Amount)
		}
	}
	sum.NetProfit = sum.TotalRevenue.Sub(sum.TotalPurchases)
	return sum, nil
}

// containsFold reports whether s contains the already-lowercased needle.
func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
