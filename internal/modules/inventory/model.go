package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a create or update payload breaks a field rule.
var ErrInvalidInput = errors.New("invalid input")

func invalid(field, rule string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, rule)
}

// Product is a stocked item. SupplierID is a weak reference: it is never
// checked against the supplier collection.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ReorderLevel int             `json:"reorderLevel"`
	SupplierID   int64           `json:"supplierId"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// LowStock reports whether the product is at or below its reorder level.
func (p *Product) LowStock() bool { return p.Quantity <= p.ReorderLevel }

// Supplier provides products. LeadTimeDays of 0 means "use the default".
type Supplier struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	LeadTimeDays int    `json:"leadTimeDays,omitempty"`
}

// TransactionType is either a sale or a purchase.
type TransactionType string

const (
	Sale     TransactionType = "sale"
	Purchase TransactionType = "purchase"
)

func (t TransactionType) Valid() bool { return t == Sale || t == Purchase }

// Transaction records stock leaving (sale) or entering (purchase).
// Amount is entered independently of the product price.
type Transaction struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Type      TransactionType `json:"type"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes"`
}

// NewProduct is the payload for AddProduct; id and createdAt are assigned by the store.
type NewProduct struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ReorderLevel int             `json:"reorderLevel"`
	SupplierID   int64           `json:"supplierId"`
}

func (n NewProduct) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid("name", "is required")
	}
	if n.Quantity < 0 {
		return invalid("quantity", "must not be negative")
	}
	if n.Price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	if n.ReorderLevel < 0 {
		return invalid("reorderLevel", "must not be negative")
	}
	return nil
}

// ProductPatch carries a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name         *string          `json:"name,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ReorderLevel *int             `json:"reorderLevel,omitempty"`
	SupplierID   *int64           `json:"supplierId,omitempty"`
}

func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return invalid("quantity", "must not be negative")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	if p.ReorderLevel != nil && *p.ReorderLevel < 0 {
		return invalid("reorderLevel", "must not be negative")
	}
	return nil
}

func (p ProductPatch) apply(dst *Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Quantity != nil {
		dst.Quantity = *p.Quantity
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.ReorderLevel != nil {
		dst.ReorderLevel = *p.ReorderLevel
	}
	if p.SupplierID != nil {
		dst.SupplierID = *p.SupplierID
	}
}

// NewSupplier is the payload for AddSupplier.
type NewSupplier struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	LeadTimeDays int    `json:"leadTimeDays"`
}

func (n NewSupplier) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid("name", "is required")
	}
	if n.LeadTimeDays < 0 {
		return invalid("leadTimeDays", "must not be negative")
	}
	return nil
}

// SupplierPatch carries a partial supplier update.
type SupplierPatch struct {
	Name         *string `json:"name,omitempty"`
	Contact      *string `json:"contact,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	LeadTimeDays *int    `json:"leadTimeDays,omitempty"`
}

func (p SupplierPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if p.LeadTimeDays != nil && *p.LeadTimeDays < 0 {
		return invalid("leadTimeDays", "must not be negative")
	}
	return nil
}

func (p SupplierPatch) apply(dst *Supplier) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Contact != nil {
		dst.Contact = *p.Contact
	}
	if p.Email != nil {
		dst.Email = *p.Email
	}
	if p.Phone != nil {
		dst.Phone = *p.Phone
	}
	if p.Address != nil {
		dst.Address = *p.Address
	}
	if p.LeadTimeDays != nil {
		dst.LeadTimeDays = *p.LeadTimeDays
	}
}

// NewTransaction is the payload for AddTransaction; id and date are assigned by the store.
type NewTransaction struct {
	ProductID int64           `json:"productId"`
	Type      TransactionType `json:"type"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes"`
}

func (n NewTransaction) Validate() error {
	if !n.Type.Valid() {
		return invalid("type", `must be "sale" or "purchase"`)
	}
	if n.Quantity <= 0 {
		return invalid("quantity", "must be positive")
	}
	if n.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	return nil
}

// TransactionFilter narrows ListTransactions. Zero values match everything.
type TransactionFilter struct {
	Type      TransactionType
	ProductID int64
	Query     string // matched against product name and notes
}

// Summary is the dashboard roll-up.
type Summary struct {
	TotalProducts      int             `json:"totalProducts"`
	TotalSuppliers     int             `json:"totalSuppliers"`
	LowStockCount      int             `json:"lowStockCount"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	TotalPurchases     decimal.Decimal `json:"totalPurchases"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	InventoryValue     decimal.Decimal `json:"inventoryValue"`
	LowStockProducts   []*Product      `json:"lowStockProducts"`
	RecentTransactions []*Transaction  `json:"recentTransactions"`
}
