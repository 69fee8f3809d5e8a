package reorder

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// BuildPrompt renders the analysis request sent to the model. The reply is
// expected to hold a single JSON object with the Suggestion fields.
func BuildPrompt(info ProductInfo, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are an inventory planning assistant for a small business. ")
	b.WriteString("Using the product data below, recommend how many units to reorder.\n\n")

	b.WriteString("PRODUCT DATA:\n")
	fmt.Fprintf(&b, "Product: %s (%s)\n", info.Name, info.Category)
	fmt.Fprintf(&b, "Current Stock Level: %d units\n", info.CurrentStock)
	fmt.Fprintf(&b, "Reorder Threshold: %d units\n", info.ReorderLevel)
	fmt.Fprintf(&b, "Average Monthly Sales: %.1f units\n", info.AvgMonthlySales)
	fmt.Fprintf(&b, "Market Trend: %s\n", info.SeasonalTrend)
	fmt.Fprintf(&b, "Supplier Lead Time: %d days\n", info.SupplierLeadTime)
	fmt.Fprintf(&b, "Unit Cost: $%s\n\n", info.UnitCost.StringFixed(2))

	b.WriteString("RECENT SALES & PURCHASE HISTORY:\n")
	if len(info.RecentHistory) == 0 {
		b.WriteString("• no recorded transactions\n")
	}
	for _, h := range info.RecentHistory {
		fmt.Fprintf(&b, "• %s: %s - %d units\n", h.Date.Format(dateLayout), strings.ToUpper(h.Type), h.Quantity)
	}

	b.WriteString("\nCONSIDER:\n")
	b.WriteString("1. Safety stock for demand variability\n")
	b.WriteString("2. Economic order quantity\n")
	b.WriteString("3. Seasonal patterns and the market trend\n")
	b.WriteString("4. Cash flow and carrying costs\n")
	b.WriteString("5. Stockout versus overstock risk\n")
	b.WriteString("6. Supplier lead time variation\n\n")

	fmt.Fprintf(&b, "Today is %s. Reply with only this JSON object:\n", now.Format(dateLayout))
	fmt.Fprintf(&b, `{
  "recommendedQuantity": <integer between %d and %d>,
  "reasoning": "<2-3 sentences on the calculation and the main factors>",
  "riskLevel": "<Low|Medium|High>",
  "nextReviewDate": "<YYYY-MM-DD, 2-4 weeks from today>",
  "costImpact": "<estimated cost in dollars>",
  "stockoutRisk": "<percentage chance of stockout if not followed>",
  "alternativeStrategy": "<short alternative if budget is constrained>"
}
`, MinQuantity, MaxQuantity)
	return b.String()
}
