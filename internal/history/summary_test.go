package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, map[domain.RiskLevel]int{domain.RiskLow: 0, domain.RiskMedium: 0, domain.RiskHigh: 0}, s.ByLevel)
	assert.Zero(t, s.MeanSeverity)
	assert.Zero(t, s.StdDevSeverity)
}

func TestSummarize_Single(t *testing.T) {
	s := Summarize([]domain.RiskAssessment{{RiskLevel: domain.RiskHigh, SeverityScore: 1, Confidence: 0.83}})

	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.ByLevel[domain.RiskHigh])
	assert.Equal(t, 1.0, s.MeanSeverity)
	assert.Zero(t, s.StdDevSeverity)
	assert.Equal(t, 0.83, s.MeanConfidence)
	assert.Zero(t, s.StdDevConfidence)
}

func TestSummarize_Many(t *testing.T) {
	entries := []domain.RiskAssessment{
		{RiskLevel: domain.RiskHigh, SeverityScore: 1, Confidence: 0.9},
		{RiskLevel: domain.RiskLow, SeverityScore: 0, Confidence: 0.7},
		{RiskLevel: domain.RiskMedium, SeverityScore: 0.5, Confidence: 0.8},
		{RiskLevel: domain.RiskLow, SeverityScore: 0.5, Confidence: 0.6},
	}

	s := Summarize(entries)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ByLevel[domain.RiskLow])
	assert.Equal(t, 1, s.ByLevel[domain.RiskMedium])
	assert.Equal(t, 1, s.ByLevel[domain.RiskHigh])
	assert.InDelta(t, 0.5, s.MeanSeverity, 1e-9)
	// sample variance of {1, 0, 0.5, 0.5} = 0.5 / 3
	assert.InDelta(t, 0.408248290, s.StdDevSeverity, 1e-6)
	assert.Equal(t, 1.0, s.MaxSeverity)
	assert.InDelta(t, 0.75, s.MeanConfidence, 1e-9)
	assert.InDelta(t, 0.129099445, s.StdDevConfidence, 1e-6)
}
