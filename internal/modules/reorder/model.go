package reorder

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured means the model credential is missing. Not retried.
	ErrNotConfigured = errors.New("gemini API key not configured")
	// ErrTimeout means the model call did not finish within the request budget.
	ErrTimeout = errors.New("reorder suggestion timed out")
	// ErrProductNotFound means the requested product is not in the store.
	ErrProductNotFound = errors.New("product not found")
	// ErrMalformedResponse covers model replies that cannot be turned into a
	// Suggestion. It never reaches callers; the fallback formula is used instead.
	ErrMalformedResponse = errors.New("malformed model response")
)

// UpstreamError is a transport failure or non-2xx reply from the model endpoint.
type UpstreamError struct {
	StatusCode int // 0 for transport failures
	Status     string
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gemini API error: %v", e.Err)
	}
	return fmt.Sprintf("gemini API error: %s", e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Source tells whether a suggestion came from the model or the formula.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

const (
	MinQuantity = 5
	MaxQuantity = 200
)

// Suggestion is the restocking recommendation returned to callers.
type Suggestion struct {
	RecommendedQuantity int       `json:"recommendedQuantity"`
	Reasoning           string    `json:"reasoning"`
	RiskLevel           RiskLevel `json:"riskLevel"`
	NextReviewDate      string    `json:"nextReviewDate"`
	CostImpact          string    `json:"costImpact"`
	StockoutRisk        string    `json:"stockoutRisk"`
	AlternativeStrategy string    `json:"alternativeStrategy"`
}

// HistoryEvent is one past sale or purchase shown to the model.
type HistoryEvent struct {
	Date     time.Time `json:"date"`
	Type     string    `json:"type"`
	Quantity int       `json:"quantity"`
}

// ProductInfo is the product context the suggestion was computed from.
type ProductInfo struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	CurrentStock     int             `json:"currentStock"`
	ReorderLevel     int             `json:"reorderLevel"`
	AvgMonthlySales  float64         `json:"avgMonthlySales"`
	SeasonalTrend    string          `json:"seasonalTrend"`
	SupplierLeadTime int             `json:"supplierLeadTime"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	RecentHistory    []HistoryEvent  `json:"recentHistory"`
}

// Result is the success envelope.
type Result struct {
	Success           bool        `json:"success"`
	Suggestion        Suggestion  `json:"suggestion"`
	ProductInfo       ProductInfo `json:"productInfo"`
	AnalysisTimestamp time.Time   `json:"analysisTimestamp"`
	AnalysisID        uuid.UUID   `json:"analysisId"`
	Source            Source      `json:"source"`
}

// Failure is the error envelope.
type Failure struct {
	Success         bool      `json:"success"`
	Error           string    `json:"error"`
	Timestamp       time.Time `json:"timestamp"`
	Troubleshooting string    `json:"troubleshooting,omitempty"`
}
