package inventory

import "context"

// Absent records are reported as a nil result with a nil error, never as an error.

// ProductRepository defines product data storage.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
}

// SupplierRepository defines supplier data storage.
type SupplierRepository interface {
	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, id int64) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]*Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, patch SupplierPatch) (*Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) (bool, error)
}

// TransactionRepository defines transaction data storage.
type TransactionRepository interface {
	// CreateTransaction stores t and applies its stock effect to the referenced
	// product as one atomic step. applied is false when the product is absent.
	CreateTransaction(ctx context.Context, t *Transaction) (applied bool, err error)
	ListTransactions(ctx context.Context) ([]*Transaction, error)
}

// Repository is the backing behind the inventory Service. All three
// collections live in one backing so a transaction and its effect commit together.
type Repository interface {
	ProductRepository
	SupplierRepository
	TransactionRepository
}
