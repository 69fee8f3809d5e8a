package reorder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// modelReply accepts the loose shapes models produce: numbers as strings
// and free text as numbers.
type modelReply struct {
	RecommendedQuantity json.RawMessage `json:"recommendedQuantity"`
	Reasoning           json.RawMessage `json:"reasoning"`
	RiskLevel           json.RawMessage `json:"riskLevel"`
	NextReviewDate      json.RawMessage `json:"nextReviewDate"`
	CostImpact          json.RawMessage `json:"costImpact"`
	StockoutRisk        json.RawMessage `json:"stockoutRisk"`
	AlternativeStrategy json.RawMessage `json:"alternativeStrategy"`
}

// ParseSuggestion extracts a Suggestion from raw model text. Errors wrap
// ErrMalformedResponse. A nextReviewDate that is not YYYY-MM-DD comes back empty.
func ParseSuggestion(text string) (*Suggestion, error) {
	obj, ok := firstObject(stripFences(text))
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	var reply modelReply
	if err := json.Unmarshal([]byte(obj), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	qty, ok := number(reply.RecommendedQuantity)
	if !ok || qty == 0 {
		return nil, fmt.Errorf("%w: missing recommendedQuantity", ErrMalformedResponse)
	}
	reasoning := str(reply.Reasoning)
	if reasoning == "" {
		return nil, fmt.Errorf("%w: missing reasoning", ErrMalformedResponse)
	}
	risk, ok := riskLevel(str(reply.RiskLevel))
	if !ok {
		return nil, fmt.Errorf("%w: missing or unknown riskLevel", ErrMalformedResponse)
	}

	return &Suggestion{
		RecommendedQuantity: clampQuantity(qty),
		Reasoning:           reasoning,
		RiskLevel:           risk,
		NextReviewDate:      reviewDate(str(reply.NextReviewDate)),
		CostImpact:          str(reply.CostImpact),
		StockoutRisk:        str(reply.StockoutRisk),
		AlternativeStrategy: str(reply.AlternativeStrategy),
	}, nil
}

func clampQuantity(q float64) int {
	q = math.Max(MinQuantity, math.Min(MaxQuantity, q))
	return int(math.Round(q))
}

func riskLevel(s string) (RiskLevel, bool) {
	for _, r := range []RiskLevel{RiskLow, RiskMedium, RiskHigh} {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// stripFences drops markdown code fences around the reply.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// firstObject returns the first balanced {...} in s, skipping braces inside
// JSON strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// number reads a JSON number or a numeric string.
func number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil && !math.IsNaN(f)
}

// reviewDate keeps s only when it is a YYYY-MM-DD date.
func reviewDate(s string) string {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return ""
	}
	return s
}

// str reads a JSON string, or the literal text of any other JSON value.
func str(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}
