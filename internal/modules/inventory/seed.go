package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type seedTransaction struct {
	product  int // index into seedProducts
	typ      TransactionType
	quantity int
	amount   string
	daysAgo  int
	notes    string
}

var seedSuppliers = []Supplier{
	{Name: "Tech Solutions Inc.", Contact: "John Smith", Email: "john@techsolutions.com",
		Phone: "+1-555-0123", Address: "123 Tech Street, Silicon Valley, CA", LeadTimeDays: 7},
	{Name: "Global Supplies Co.", Contact: "Sarah Johnson", Email: "sarah@globalsupplies.com",
		Phone: "+1-555-0456", Address: "456 Supply Ave, New York, NY", LeadTimeDays: 14},
}

// Quantities are the stock before the seed transactions are replayed.
var seedProducts = []struct {
	product  Product
	supplier int // index into seedSuppliers
}{
	{Product{Name: "Wireless Headphones", Category: "Electronics", Quantity: 20,
		Price: decimal.RequireFromString("99.99"), ReorderLevel: 10}, 0},
	{Product{Name: "Coffee Beans - Premium", Category: "Food & Beverage", Quantity: 3,
		Price: decimal.RequireFromString("24.99"), ReorderLevel: 15}, 1},
	{Product{Name: "Office Chair", Category: "Furniture", Quantity: 13,
		Price: decimal.RequireFromString("249.99"), ReorderLevel: 5}, 0},
}

// Oldest first so ids follow the dates.
var seedTransactions = []seedTransaction{
	{0, Purchase, 20, "1799.80", 40, "Quarterly restock"},
	{0, Sale, 12, "1199.88", 25, "Corporate order"},
	{2, Sale, 1, "249.99", 7, "Online order fulfillment"},
	{1, Purchase, 20, "499.80", 6, "Weekly inventory restock"},
	{0, Sale, 3, "299.97", 5, "Walk-in customer purchase"},
	{1, Sale, 18, "449.82", 3, "Cafe wholesale order"},
}

// Seed loads the demo catalogue into an empty store. It does nothing when
// any product already exists.
func (s *service) Seed(ctx context.Context) error {
	existing, err := s.repo.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.log.InfoContext(ctx, "store not empty, demo data skipped")
		return nil
	}

	now := s.now().UTC()
	supplierIDs := make([]int64, len(seedSuppliers))
	for i, sup := range seedSuppliers {
		sup := sup
		if err := s.repo.CreateSupplier(ctx, &sup); err != nil {
			return err
		}
		supplierIDs[i] = sup.ID
	}

	productIDs := make([]int64, len(seedProducts))
	for i, sp := range seedProducts {
		p := sp.product
		p.SupplierID = supplierIDs[sp.supplier]
		p.CreatedAt = now.AddDate(0, 0, -60)
		if err := s.repo.CreateProduct(ctx, &p); err != nil {
			return err
		}
		productIDs[i] = p.ID
	}

	for _, st := range seedTransactions {
		t := &Transaction{
			ProductID: productIDs[st.product],
			Type:      st.typ,
			Quantity:  st.quantity,
			Amount:    decimal.RequireFromString(st.amount),
			Date:      now.Add(-time.Duration(st.daysAgo) * 24 * time.Hour),
			Notes:     st.notes,
		}
		if _, err := s.repo.CreateTransaction(ctx, t); err != nil {
			return err
		}
	}
	s.log.InfoContext(ctx, "demo data loaded",
		"suppliers", len(seedSuppliers), "products", len(seedProducts), "transactions", len(seedTransactions))
	return nil
}
