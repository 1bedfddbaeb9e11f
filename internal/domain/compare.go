package domain

import (
	"fmt"
	"math"
)

// SignificantSeverityChange is the absolute severity delta, in percentage
// points, above which a comparison flags the change.
const SignificantSeverityChange = 10.0

// Observation texts emitted by Compare.
const (
	ObservationSeverityChange     = "significant severity change detected"
	ObservationConfidenceIncrease = "confidence increased"
	ObservationConfidenceDecrease = "confidence decreased"
)

// Compare derives the change from a to b, where b is the later assessment.
// Deltas are rounded to two decimals of a percentage point.
func Compare(a, b RiskAssessment) ComparisonResult {
	res := ComparisonResult{
		SeverityDelta:   percentDelta(a.SeverityScore, b.SeverityScore),
		ConfidenceDelta: percentDelta(a.Confidence, b.Confidence),
		Observations:    []string{},
	}

	if a.RiskLevel != b.RiskLevel {
		res.Observations = append(res.Observations,
			fmt.Sprintf("risk level changed from %s to %s", a.RiskLevel, b.RiskLevel))
	}
	if math.Abs(res.SeverityDelta) > SignificantSeverityChange {
		res.Observations = append(res.Observations, ObservationSeverityChange)
	}
	switch {
	case res.ConfidenceDelta > 0:
		res.Observations = append(res.Observations, ObservationConfidenceIncrease)
	case res.ConfidenceDelta < 0:
		res.Observations = append(res.Observations, ObservationConfidenceDecrease)
	}
	return res
}

// percentDelta returns round((to - from) * 100, 2).
func percentDelta(from, to float64) float64 {
	return math.Round((to-from)*100*100) / 100
}
