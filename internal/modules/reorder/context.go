package reorder

import (
	"context"
	"slices"
	"time"

	"github.com/stockroom/inventory-api/internal/modules/inventory"
)

// Inventory is the slice of the inventory store the reorder flow reads.
type Inventory interface {
	GetProduct(ctx context.Context, id int64) (*inventory.Product, error)
	GetSupplier(ctx context.Context, id int64) (*inventory.Supplier, error)
	ListTransactions(ctx context.Context, f inventory.TransactionFilter) ([]*inventory.Transaction, error)
}

const (
	salesWindow    = 90 * 24 * time.Hour
	trendWindow    = 30 * 24 * time.Hour
	historyLength  = 10
	trendThreshold = 0.10
)

// buildProductInfo joins the live product, its supplier and its transactions.
func buildProductInfo(ctx context.Context, inv Inventory, productID int64, now time.Time, defaultLeadTime int) (*ProductInfo, error) {
	p, err := inv.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	leadTime := defaultLeadTime
	sup, err := inv.GetSupplier(ctx, p.SupplierID)
	if err != nil {
		return nil, err
	}
	if sup != nil && sup.LeadTimeDays > 0 {
		leadTime = sup.LeadTimeDays
	}

	// newest first
	txs, err := inv.ListTransactions(ctx, inventory.TransactionFilter{ProductID: productID})
	if err != nil {
		return nil, err
	}

	var windowSales, recent, previous int
	for _, t := range txs {
		if t.Type != inventory.Sale {
			continue
		}
		age := now.Sub(t.Date)
		if age < 0 || age > salesWindow {
			continue
		}
		windowSales += t.Quantity
		switch {
		case age <= trendWindow:
			recent += t.Quantity
		case age <= 2*trendWindow:
			previous += t.Quantity
		}
	}

	history := make([]HistoryEvent, 0, historyLength)
	for _, t := range txs[:min(historyLength, len(txs))] {
		history = append(history, HistoryEvent{Date: t.Date, Type: string(t.Type), Quantity: t.Quantity})
	}
	slices.Reverse(history)

	return &ProductInfo{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		CurrentStock:     p.Quantity,
		ReorderLevel:     p.ReorderLevel,
		AvgMonthlySales:  float64(windowSales) / (float64(salesWindow) / float64(trendWindow)),
		SeasonalTrend:    trend(recent, previous),
		SupplierLeadTime: leadTime,
		UnitCost:         p.Price,
		RecentHistory:    history,
	}, nil
}

// trend compares the last 30 days of sales against the 30 days before.
func trend(recent, previous int) string {
	if previous == 0 {
		if recent > 0 {
			return "increasing"
		}
		return "stable"
	}
	ratio := float64(recent) / float64(previous)
	switch {
	case ratio > 1+trendThreshold:
		return "increasing"
	case ratio < 1-trendThreshold:
		return "decreasing"
	default:
		return "stable"
	}
}
