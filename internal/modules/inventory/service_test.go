package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/inventory-api/internal/logger"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// stepClock advances one minute per call so every record gets a distinct time.
func stepClock() func() time.Time {
	t := epoch
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestService(opts ...Option) Service {
	opts = append([]Option{WithClock(stepClock()), WithLogger(logger.Discard())}, opts...)
	return NewService(NewMemoryRepository(), opts...)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func addProduct(t *testing.T, svc Service, name string, qty, reorder int) *Product {
	t.Helper()
	p, err := svc.AddProduct(context.Background(), NewProduct{
		Name: name, Category: "General", Quantity: qty,
		Price: decimal.RequireFromString("10.00"), ReorderLevel: reorder, SupplierID: 1,
	})
	require.NoError(t, err)
	return p
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveStockAdjustment(txType string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[txType]++
}

func TestAddProductAssignsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	in := NewProduct{
		Name: "Wireless Headphones", Category: "Electronics", Quantity: 25,
		Price: decimal.RequireFromString("99.99"), ReorderLevel: 10, SupplierID: 1,
	}
	created, err := svc.AddProduct(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Quantity, got.Quantity)
	assertDecimal(t, "99.99", got.Price)
	assert.Equal(t, in.ReorderLevel, got.ReorderLevel)
	assert.Equal(t, in.SupplierID, got.SupplierID)
	assert.Equal(t, epoch.Add(time.Minute), got.CreatedAt)
}

func TestAddProductAllowsDuplicateNames(t *testing.T) {
	svc := newTestService()
	a := addProduct(t, svc, "Mug", 1, 0)
	b := addProduct(t, svc, "Mug", 1, 0)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAddProductValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, NewProduct{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddProduct(ctx, NewProduct{Name: "x", Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddProduct(ctx, NewProduct{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProductMergesFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p := addProduct(t, svc, "Mug", 4, 2)

	name := "Large Mug"
	price := decimal.RequireFromString("12.50")
	updated, err := svc.UpdateProduct(ctx, p.ID, ProductPatch{Name: &name, Price: &price})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Large Mug", updated.Name)
	assertDecimal(t, "12.50", updated.Price)
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
}

func TestMissingIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	name := "ghost"

	p, err := svc.UpdateProduct(ctx, 404, ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, p)

	deleted, err := svc.DeleteProduct(ctx, 404)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := svc.GetProduct(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, got)

	s, err := svc.UpdateSupplier(ctx, 404, SupplierPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, s)

	sup, err := svc.GetSupplier(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, sup)

	deleted, err = svc.DeleteSupplier(ctx, 404)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSaleAndPurchaseAdjustQuantity(t *testing.T) {
	ctx := context.Background()
	obs := &countingObserver{}
	svc := newTestService(WithStockObserver(obs))
	p := addProduct(t, svc, "Headphones", 25, 10)

	_, err := svc.AddTransaction(ctx, NewTransaction{ProductID: p.ID, Type: Sale, Quantity: 3,
		Amount: decimal.RequireFromString("299.97")})
	require.NoError(t, err)
	got, _ := svc.GetProduct(ctx, p.ID)
	assert.Equal(t, 22, got.Quantity)

	_, err = svc.AddTransaction(ctx, NewTransaction{ProductID: p.ID, Type: Purchase, Quantity: 20})
	require.NoError(t, err)
	got, _ = svc.GetProduct(ctx, p.ID)
	assert.Equal(t, 42, got.Quantity)

	assert.Equal(t, map[string]int{"sale": 1, "purchase": 1}, obs.counts)
}

func TestSaleCanDriveStockNegative(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p := addProduct(t, svc, "Coffee", 5, 15)

	_, err := svc.AddTransaction(ctx, NewTransaction{ProductID: p.ID, Type: Sale, Quantity: 8})
	require.NoError(t, err)

	got, _ := svc.GetProduct(ctx, p.ID)
	assert.Equal(t, -3, got.Quantity)
}

func TestTransactionForUnknownProductIsStored(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tx, err := svc.AddTransaction(ctx, NewTransaction{ProductID: 999, Type: Sale, Quantity: 1, Notes: "orphan"})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, epoch.Add(time.Minute), tx.Date)

	all, err := svc.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(999), all[0].ProductID)
}

func TestAddTransactionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	for name, in := range map[string]NewTransaction{
		"bad type":        {ProductID: 1, Type: "refund", Quantity: 1},
		"zero quantity":   {ProductID: 1, Type: Sale, Quantity: 0},
		"negative amount": {ProductID: 1, Type: Sale, Quantity: 1, Amount: decimal.NewFromInt(-5)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AddTransaction(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDeleteProductKeepsTransactions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p := addProduct(t, svc, "Chair", 12, 5)
	_, err := svc.AddTransaction(ctx, NewTransaction{ProductID: p.ID, Type: Sale, Quantity: 1})
	require.NoError(t, err)

	deleted, err := svc.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	txs, err := svc.ListTransactions(ctx, TransactionFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	got, err := svc.GetProduct(ctx, txs[0].ProductID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLowStockProductsTracksMutations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	a := addProduct(t, svc, "A", 10, 10) // at threshold
	b := addProduct(t, svc, "B", 11, 10)
	c := addProduct(t, svc, "C", 0, 0)

	check := func(want ...int64) {
		t.Helper()
		low, err := svc.LowStockProducts(ctx)
		require.NoError(t, err)
		ids := make([]int64, 0, len(low))
		for _, p := range low {
			assert.LessOrEqual(t, p.Quantity, p.ReorderLevel)
			ids = append(ids, p.ID)
		}
		assert.Equal(t, want, ids)
	}

	check(a.ID, c.ID)

	_, err := svc.AddTransaction(ctx, NewTransaction{ProductID: b.ID, Type: Sale, Quantity: 1})
	require.NoError(t, err)
	check(a.ID, b.ID, c.ID)

	_, err = svc.AddTransaction(ctx, NewTransaction{ProductID: a.ID, Type: Purchase, Quantity: 5})
	require.NoError(t, err)
	check(b.ID, c.ID)

	level := 20
	_, err = svc.UpdateProduct(ctx, a.ID, ProductPatch{ReorderLevel: &level})
	require.NoError(t, err)
	check(a.ID, b.ID, c.ID)

	_, err = svc.DeleteProduct(ctx, c.ID)
	require.NoError(t, err)
	check(a.ID, b.ID)
}

func TestListProductsQuery(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	addProduct(t, svc, "Office Chair", 1, 0)
	addProduct(t, svc, "Desk Lamp", 1, 0)

	got, err := svc.ListProducts(ctx, "chair")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Office Chair", got[0].Name)

	got, err = svc.ListProducts(ctx, "general")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListTransactionsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	mug := addProduct(t, svc, "Mug", 50, 0)
	lamp := addProduct(t, svc, "Lamp", 50, 0)

	first, _ := svc.AddTransaction(ctx, NewTransaction{ProductID: mug.ID, Type: Sale, Quantity: 1, Notes: "walk-in"})
	second, _ := svc.AddTransaction(ctx, NewTransaction{ProductID: lamp.ID, Type: Purchase, Quantity: 5, Notes: "restock"})
	third, _ := svc.AddTransaction(ctx, NewTransaction{ProductID: lamp.ID, Type: Sale, Quantity: 2, Notes: "online"})

	all, err := svc.ListTransactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	sales, err := svc.ListTransactions(ctx, TransactionFilter{Type: Sale})
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	byName, err := svc.ListTransactions(ctx, TransactionFilter{Query: "LAMP"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byNotes, err := svc.ListTransactions(ctx, TransactionFilter{Query: "walk"})
	require.NoError(t, err)
	require.Len(t, byNotes, 1)
	assert.Equal(t, first.ID, byNotes[0].ID)
}

func TestSuppliersAndProductCount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	sup, err := svc.AddSupplier(ctx, NewSupplier{Name: "Global Supplies Co.", Contact: "Sarah Johnson", LeadTimeDays: 14})
	require.NoError(t, err)
	_, err = svc.AddSupplier(ctx, NewSupplier{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddProduct(ctx, NewProduct{Name: "Beans", SupplierID: sup.ID})
	require.NoError(t, err)

	n, err := svc.CountProductsBySupplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// the store does not enforce the referencing-products rule
	deleted, err := svc.DeleteSupplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := svc.ListSuppliers(ctx, "sarah")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestReturnedRecordsDoNotAliasStore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p := addProduct(t, svc, "Mug", 3, 1)

	p.Quantity = 1000
	list, _ := svc.ListProducts(ctx, "")
	list[0].Name = "changed"

	got, _ := svc.GetProduct(ctx, p.ID)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, "Mug", got.Name)
}

func TestConcurrentSalesDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), WithLogger(logger.Discard()))
	p := addProduct(t, svc, "Widget", 200, 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.AddTransaction(ctx, NewTransaction{ProductID: p.ID, Type: Sale, Quantity: 3})
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.AddTransaction(ctx, NewTransaction{ProductID: p.ID, Type: Purchase, Quantity: 1})
		}()
	}
	wg.Wait()

	got, _ := svc.GetProduct(ctx, p.ID)
	assert.Equal(t, 200-300+100, got.Quantity)

	txs, _ := svc.ListTransactions(ctx, TransactionFilter{})
	assert.Len(t, txs, 200)
}

func TestSeedAndSummary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx)) // second run is a no-op

	products, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, 25, products[0].Quantity)
	assert.Equal(t, 5, products[1].Quantity)
	assert.Equal(t, 12, products[2].Quantity)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalProducts)
	assert.Equal(t, 2, sum.TotalSuppliers)
	assert.Equal(t, 1, sum.LowStockCount)
	assert.Equal(t, "Coffee Beans - Premium", sum.LowStockProducts[0].Name)
	assertDecimal(t, "2199.66", sum.TotalRevenue)
	assertDecimal(t, "2299.60", sum.TotalPurchases)
	assertDecimal(t, "-99.94", sum.NetProfit)
	assertDecimal(t, "5624.58", sum.InventoryValue)
	require.Len(t, sum.RecentTransactions, 5)
	assert.Equal(t, "Cafe wholesale order", sum.RecentTransactions[0].Notes)
}

func TestSummaryOnEmptyStore(t *testing.T) {
	sum, err := newTestService().Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.TotalProducts)
	assert.Empty(t, sum.RecentTransactions)
	assert.True(t, sum.NetProfit.IsZero())
}
