// Package export renders assessments and comparisons as PDF reports, CSV
// history files and terminal tables.
package export

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

// NotAvailable stands in for values that cannot be rendered.
const NotAvailable = "N/A"

const footer = "SafeStride - Pedestrian Safety Prediction System"

// Section is a headed block of report lines.
type Section struct {
	Heading string
	Lines   []string
}

// Report is a format-neutral document: a title followed by sections.
type Report struct {
	Title     string
	Generated time.Time
	Sections  []Section
	Footer    string
}

// AssessmentReport lays out a single assessment.
func AssessmentReport(a domain.RiskAssessment, generated time.Time) Report {
	overview := []string{
		"Assessment ID: " + orNA(a.ID),
		"Recorded: " + orNA(a.TimestampString()),
		"Risk Level: " + orNA(string(a.RiskLevel)),
	}
	if a.Prediction != "" {
		overview = append(overview, "Prediction: "+a.Prediction)
	}
	overview = append(overview,
		"Severity Score: "+Percent(a.SeverityScore),
		"Confidence: "+Percent(a.Confidence),
	)

	factors := make([]string, len(a.RiskFactors))
	for i, f := range a.RiskFactors {
		factors[i] = fmt.Sprintf("%s (weight %s)", orNA(f.Name), decimal(f.Weight))
	}

	return Report{
		Title:     "SafeStride Risk Assessment Report",
		Generated: generated,
		Sections: []Section{
			{Heading: "Risk Assessment", Lines: overview},
			{Heading: "Probability Distribution", Lines: distribution(a.ProbabilityDistribution)},
			{Heading: "Identified Risk Factors", Lines: numbered(factors)},
			{Heading: "Safety Recommendations", Lines: numbered(a.Recommendations)},
		},
		Footer: footer,
	}
}

// ComparisonReport lays out two assessments side by side with the deltas
// and observations from domain.Compare. a is the earlier assessment.
func ComparisonReport(a, b domain.RiskAssessment, generated time.Time) Report {
	delta := domain.Compare(a, b)
	return Report{
		Title:     "SafeStride Prediction Comparison",
		Generated: generated,
		Sections: []Section{
			{Heading: "Prediction 1", Lines: comparisonLines(a)},
			{Heading: "Prediction 2", Lines: comparisonLines(b)},
			{Heading: "Differences", Lines: []string{
				"Severity Difference: " + Points(delta.SeverityDelta),
				"Confidence Difference: " + Points(delta.ConfidenceDelta),
			}},
			{Heading: "Quick Analysis", Lines: numbered(delta.Observations)},
		},
		Footer: footer,
	}
}

func comparisonLines(a domain.RiskAssessment) []string {
	return []string{
		"Risk Level: " + orNA(string(a.RiskLevel)),
		"Severity: " + Percent(a.SeverityScore),
		"Confidence: " + Percent(a.Confidence),
		"Time: " + orNA(a.TimestampString()),
	}
}

// Percent renders a fraction as a percentage with two decimals.
func Percent(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// Points renders a value already expressed in percentage points.
func Points(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", v)
}

func decimal(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", v)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func distribution(dist map[string]float64) []string {
	if len(dist) == 0 {
		return []string{"None"}
	}
	labels := slices.Sorted(maps.Keys(dist))
	lines := make([]string, len(labels))
	for i, label := range labels {
		lines[i] = label + ": " + Percent(dist[label])
	}
	return lines
}

// numbered prefixes items with 1-based positions.
func numbered(items []string) []string {
	if len(items) == 0 {
		return []string{"None"}
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, orNA(item))
	}
	return lines
}

// ReportFilename names an assessment report generated at t.
func ReportFilename(t time.Time) string {
	return "SafeStride_Risk_Report_" + t.UTC().Format(time.DateOnly) + ".pdf"
}

// ComparisonFilename names a comparison report generated at t.
func ComparisonFilename(t time.Time) string {
	return "safestride-comparison-" + t.UTC().Format(time.DateOnly) + ".pdf"
}

// HistoryCSVFilename names a history export generated at t.
func HistoryCSVFilename(t time.Time) string {
	return "safestride-history-" + t.UTC().Format(domain.TimestampLayout) + ".csv"
}
