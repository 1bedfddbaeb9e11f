package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

var csvHeader = []string{"Timestamp", "Risk Level", "Severity Score", "Confidence"}

// WriteHistoryCSV writes one row per entry, in the order given. Confidence
// is rendered as a percentage string.
func WriteHistoryCSV(w io.Writer, entries []domain.RiskAssessment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range entries {
		row := []string{
			a.TimestampString(),
			string(a.RiskLevel),
			number(a.SeverityScore),
			Percent(a.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", a.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func number(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
