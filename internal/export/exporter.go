package export

import (
	"io"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// Exporter writes documents and counts them by format.
type Exporter struct {
	metrics  *observability.Metrics
	compress bool
}

// NewExporter creates an Exporter that records exports in metrics.
func NewExporter(metrics *observability.Metrics) *Exporter {
	return &Exporter{metrics: metrics, compress: true}
}

// AssessmentPDF writes the report for a to w.
func (e *Exporter) AssessmentPDF(w io.Writer, a domain.RiskAssessment) error {
	return e.pdf(w, AssessmentReport(a, domain.Now()))
}

// ComparisonPDF writes the comparison report for a and b to w. a is the
// earlier assessment.
func (e *Exporter) ComparisonPDF(w io.Writer, a, b domain.RiskAssessment) error {
	return e.pdf(w, ComparisonReport(a, b, domain.Now()))
}

// HistoryCSV writes entries as CSV to w.
func (e *Exporter) HistoryCSV(w io.Writer, entries []domain.RiskAssessment) error {
	if err := WriteHistoryCSV(w, entries); err != nil {
		return err
	}
	e.metrics.Exports.WithLabelValues(FormatCSV).Inc()
	return nil
}

func (e *Exporter) pdf(w io.Writer, r Report) error {
	if err := writePDF(w, r, e.compress); err != nil {
		return err
	}
	e.metrics.Exports.WithLabelValues(FormatPDF).Inc()
	return nil
}
