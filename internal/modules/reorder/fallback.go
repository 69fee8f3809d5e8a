package reorder

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	daysPerMonth        = 30
	safetyStockRatio    = 0.5
	reviewInterval      = 21 * 24 * time.Hour
	fallbackAlternative = "Consider smaller, more frequent orders to reduce carrying costs"
)

// Fallback computes a suggestion from sales velocity and lead time alone.
//
//	velocity        = avgMonthlySales / 30
//	leadTimeDemand  = ceil(velocity * leadTime)
//	safetyStock     = ceil(leadTimeDemand * 0.5)
//	quantity        = max(leadTimeDemand + safetyStock, reorderLevel * 2)
func Fallback(info ProductInfo, now time.Time) Suggestion {
	velocity := info.AvgMonthlySales / daysPerMonth
	leadTimeDemand := int(math.Ceil(info.AvgMonthlySales * float64(info.SupplierLeadTime) / daysPerMonth))
	safetyStock := int(math.Ceil(float64(leadTimeDemand) * safetyStockRatio))
	qty := max(leadTimeDemand+safetyStock, info.ReorderLevel*2)

	atOrBelow := info.CurrentStock <= info.ReorderLevel
	risk, stockout, position := RiskMedium, "25%", "near"
	if atOrBelow {
		risk, stockout, position = RiskHigh, "75%", "below"
	}

	cost := info.UnitCost.Mul(decimal.NewFromInt(int64(qty)))
	return Suggestion{
		RecommendedQuantity: qty,
		Reasoning: fmt.Sprintf(
			"Based on your current sales velocity of %.1f units/day and %d-day lead time, "+
				"this quantity ensures adequate coverage plus safety stock. "+
				"Current stock of %d is %s your reorder threshold.",
			velocity, info.SupplierLeadTime, info.CurrentStock, position),
		RiskLevel:           risk,
		NextReviewDate:      now.Add(reviewInterval).Format(dateLayout),
		CostImpact:          "$" + cost.StringFixed(2),
		StockoutRisk:        stockout,
		AlternativeStrategy: fallbackAlternative,
	}
}
