package history

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

// Summary aggregates a set of assessments.
type Summary struct {
	Total   int                      `json:"total"`
	ByLevel map[domain.RiskLevel]int `json:"by_level"`

	MeanSeverity     float64 `json:"mean_severity"`
	StdDevSeverity   float64 `json:"stddev_severity"`
	MaxSeverity      float64 `json:"max_severity"`
	MeanConfidence   float64 `json:"mean_confidence"`
	StdDevConfidence float64 `json:"stddev_confidence"`
}

// Summarize counts entries per risk level and computes the mean and sample
// standard deviation of severity and confidence. Deviations of fewer than
// two entries are 0.
func Summarize(entries []domain.RiskAssessment) Summary {
	s := Summary{
		Total:   len(entries),
		ByLevel: make(map[domain.RiskLevel]int, len(domain.RiskLevels)),
	}
	for _, level := range domain.RiskLevels {
		s.ByLevel[level] = 0
	}
	if len(entries) == 0 {
		return s
	}

	severity := make([]float64, len(entries))
	confidence := make([]float64, len(entries))
	for i, a := range entries {
		s.ByLevel[a.RiskLevel]++
		severity[i] = a.SeverityScore
		confidence[i] = a.Confidence
	}

	s.MeanSeverity, s.StdDevSeverity = meanStdDev(severity)
	s.MeanConfidence, s.StdDevConfidence = meanStdDev(confidence)
	s.MaxSeverity = floats.Max(severity)
	return s
}

func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}
