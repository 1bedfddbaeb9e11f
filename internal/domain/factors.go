package domain

import "math"

// Synthetic weighting: the first factor gets 0.7 and each following one 0.1
// less, floored at 0.
const (
	syntheticTopWeight = 0.7
	syntheticStep      = 0.1
)

// SyntheticFactorWeights pairs ordered factor names with decaying display
// weights max(0, 0.7 - 0.1*index). The weights only preserve the backend's
// ranking for charts; they are not model importances.
func SyntheticFactorWeights(names []string) []RiskFactor {
	out := make([]RiskFactor, len(names))
	for i, name := range names {
		w := syntheticTopWeight - syntheticStep*float64(i)
		// Round away float noise so index 1 is 0.6, not 0.59999999.
		w = math.Round(w*1e9) / 1e9
		out[i] = RiskFactor{Name: name, Weight: math.Max(0, w)}
	}
	return out
}
