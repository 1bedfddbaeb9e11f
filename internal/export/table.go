package export

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/history"
)

// Mode controls how tables are rendered.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

func newTable(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

func rightAligned(cols ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
	}
	return cfgs
}

// HistoryTable lists entries newest first, the way they are stored.
func HistoryTable(entries []domain.RiskAssessment, m Mode) string {
	w := newTable(m)
	w.AppendHeader(table.Row{"#", "ID", "Timestamp", "Risk Level", "Severity", "Confidence"})
	for i, a := range entries {
		w.AppendRow(table.Row{i + 1, a.ID, orNA(a.TimestampString()), orNA(string(a.RiskLevel)), Percent(a.SeverityScore), Percent(a.Confidence)})
	}
	w.SetColumnConfigs(rightAligned(1, 5, 6))
	return render(w, m)
}

// AssessmentTable shows one assessment as field/value rows.
func AssessmentTable(a domain.RiskAssessment, m Mode) string {
	w := newTable(m)
	w.AppendHeader(table.Row{"Field", "Value"})
	w.AppendRow(table.Row{"ID", orNA(a.ID)})
	w.AppendRow(table.Row{"Timestamp", orNA(a.TimestampString())})
	w.AppendRow(table.Row{"Risk Level", orNA(string(a.RiskLevel))})
	w.AppendRow(table.Row{"Severity Score", Percent(a.SeverityScore)})
	w.AppendRow(table.Row{"Confidence", Percent(a.Confidence)})
	for _, line := range distribution(a.ProbabilityDistribution) {
		w.AppendRow(table.Row{"Probability", line})
	}
	for i, f := range a.RiskFactors {
		w.AppendRow(table.Row{fmt.Sprintf("Risk Factor %d", i+1), fmt.Sprintf("%s (%s)", orNA(f.Name), decimal(f.Weight))})
	}
	for i, r := range a.Recommendations {
		w.AppendRow(table.Row{fmt.Sprintf("Recommendation %d", i+1), r})
	}
	return render(w, m)
}

// ComparisonTable shows two assessments and their deltas. a is the earlier one.
func ComparisonTable(a, b domain.RiskAssessment, m Mode) string {
	delta := domain.Compare(a, b)
	w := newTable(m)
	w.AppendHeader(table.Row{"", "Prediction 1", "Prediction 2", "Difference"})
	w.AppendRow(table.Row{"Time", orNA(a.TimestampString()), orNA(b.TimestampString()), ""})
	w.AppendRow(table.Row{"Risk Level", orNA(string(a.RiskLevel)), orNA(string(b.RiskLevel)), ""})
	w.AppendRow(table.Row{"Severity", Percent(a.SeverityScore), Percent(b.SeverityScore), signedPoints(delta.SeverityDelta)})
	w.AppendRow(table.Row{"Confidence", Percent(a.Confidence), Percent(b.Confidence), signedPoints(delta.ConfidenceDelta)})
	for _, o := range delta.Observations {
		w.AppendRow(table.Row{"Observation", o, "", ""})
	}
	return render(w, m)
}

// SummaryTable shows aggregate statistics over a history.
func SummaryTable(s history.Summary, m Mode) string {
	w := newTable(m)
	w.AppendHeader(table.Row{"Metric", "Value"})
	w.AppendRow(table.Row{"Entries", s.Total})
	for _, level := range domain.RiskLevels {
		w.AppendRow(table.Row{string(level), s.ByLevel[level]})
	}
	w.AppendRow(table.Row{"Mean Severity", Percent(s.MeanSeverity)})
	w.AppendRow(table.Row{"Severity Std Dev", Percent(s.StdDevSeverity)})
	w.AppendRow(table.Row{"Max Severity", Percent(s.MaxSeverity)})
	w.AppendRow(table.Row{"Mean Confidence", Percent(s.MeanConfidence)})
	w.AppendRow(table.Row{"Confidence Std Dev", Percent(s.StdDevConfidence)})
	w.SetColumnConfigs(rightAligned(2))
	return render(w, m)
}

// signedPoints renders a delta in points, or "Same" for zero.
func signedPoints(v float64) string {
	switch {
	case !finite(v):
		return NotAvailable
	case v > 0:
		return "+" + Points(v)
	case v < 0:
		return Points(v)
	default:
		return "Same"
	}
}
