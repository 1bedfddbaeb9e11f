package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// RiskLevel is the canonical risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevels lists every level in ascending order.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// ParseRiskLevel case-normalizes a backend label such as "high", "HIGH" or
// "High Risk". Unrecognized labels map to Low.
func ParseRiskLevel(s string) RiskLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "risk"))
	switch s {
	case "high":
		return RiskHigh
	case "medium":
		return RiskMedium
	default:
		return RiskLow
	}
}

// Shape identifies which backend response layout an assessment was decoded from.
type Shape string

const (
	ShapeUnknown Shape = "unknown"
	ShapeBinary  Shape = "binary"
	ShapeLegacy  Shape = "legacy"
)

// FormPayload is the flat feature object submitted to the prediction API.
type FormPayload map[string]any

// Clone returns a shallow copy so enrichment never mutates the caller's form.
func (f FormPayload) Clone() FormPayload {
	out := make(FormPayload, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// RawResponse is an undecoded prediction API response body.
type RawResponse = json.RawMessage

// RiskFactor is a named contributing condition with a display weight.
type RiskFactor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// RiskAssessment is the canonical normalized prediction record. It is
// created once by Normalize and never modified afterwards.
type RiskAssessment struct {
	ID                      string             `json:"id"`
	Timestamp               time.Time          `json:"timestamp"`
	RiskLevel               RiskLevel          `json:"risk_level"`
	SeverityScore           float64            `json:"severity_score"`
	Confidence              float64            `json:"confidence"`
	ProbabilityDistribution map[string]float64 `json:"probability_distribution"`
	RiskFactors             []RiskFactor       `json:"risk_factors"`
	Recommendations         []string           `json:"recommendations"`

	Shape      Shape  `json:"shape"`
	Prediction string `json:"prediction,omitempty"` // backend label, binary shape only
}

// TimestampLayout renders timestamps the way they are searched and exported:
// UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TimestampString formats the assessment timestamp with TimestampLayout.
func (a RiskAssessment) TimestampString() string {
	if a.Timestamp.IsZero() {
		return ""
	}
	return a.Timestamp.UTC().Format(TimestampLayout)
}

// ComparisonResult is the derived, non-persisted delta between two assessments.
// Deltas are signed percentage points, second minus first.
type ComparisonResult struct {
	SeverityDelta   float64  `json:"severity_delta"`
	ConfidenceDelta float64  `json:"confidence_delta"`
	Observations    []string `json:"observations"`
}
