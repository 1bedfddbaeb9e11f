// Command validate checks the integrity of a persisted prediction history,
// read either from a JSON file or from the SQLite database the client uses.
// It verifies the record decodes, the collection invariants hold, and the
// CSV export reproduces every entry.
//
// Usage:
//
//	go run ./cmd/validate -db safestride.db
//	go run ./cmd/validate -history data/mock/history.json
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/safestride-client/internal/adapter/sqlite"
	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/history"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	historyPath := flag.String("history", "", "path to a history JSON file")
	dbPath := flag.String("db", "", "path to a SafeStride SQLite database")
	flag.Parse()

	if (*historyPath == "") == (*dbPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -history or -db is required")
		flag.Usage()
		os.Exit(1)
	}

	raw, err := loadRecord(context.Background(), *historyPath, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	if code := run(os.Stdout, raw); code != 0 {
		os.Exit(code)
	}
}

// loadRecord returns the raw history record. A database without one holds an
// empty history.
func loadRecord(ctx context.Context, historyPath, dbPath string) ([]byte, error) {
	if historyPath != "" {
		raw, err := os.ReadFile(historyPath)
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		return raw, nil
	}

	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	raw, found, err := store.Get(ctx, domain.HistoryKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return []byte("[]"), nil
	}
	return raw, nil
}

func run(w io.Writer, raw []byte) int {
	fmt.Fprintln(w, "=== SafeStride History Integrity Validation ===")
	fmt.Fprintln(w)

	decode := &phase{name: "Phase 1: Record decodes"}
	entries, err := history.Decode(raw)
	if err != nil {
		decode.errorf("%v", err)
	}

	phases := []*phase{decode}
	if decode.passed() {
		phases = append(phases,
			validateInvariants(entries),
			validateCSVExport(entries),
			validateSummary(entries),
		)
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Entries: %d (cap %d)\n", len(entries), history.Capacity)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func validateInvariants(entries []domain.RiskAssessment) *phase {
	p := &phase{name: "Phase 2: Collection invariants"}
	for _, issue := range history.Validate(entries) {
		p.errorf("%s", issue)
	}
	return p
}

// validateCSVExport checks the export has a header plus one row per entry,
// each matching its entry's timestamp and risk level.
func validateCSVExport(entries []domain.RiskAssessment) *phase {
	p := &phase{name: "Phase 3: CSV export parity"}

	var buf bytes.Buffer
	if err := export.WriteHistoryCSV(&buf, entries); err != nil {
		p.errorf("write csv: %v", err)
		return p
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		p.errorf("read csv back: %v", err)
		return p
	}
	if len(rows) != len(entries)+1 {
		p.errorf("csv has %d rows, want %d", len(rows), len(entries)+1)
		return p
	}
	for i, a := range entries {
		row := rows[i+1]
		if row[0] != a.TimestampString() {
			p.errorf("row %d timestamp %q, want %q", i+1, row[0], a.TimestampString())
		}
		if row[1] != string(a.RiskLevel) {
			p.errorf("row %d risk level %q, want %q", i+1, row[1], a.RiskLevel)
		}
		if row[2] == export.NotAvailable {
			p.errorf("row %d severity is not a number", i+1)
		}
	}
	return p
}

func validateSummary(entries []domain.RiskAssessment) *phase {
	p := &phase{name: "Phase 4: Summary consistency"}
	s := history.Summarize(entries)

	if s.Total != len(entries) {
		p.errorf("summary total %d, want %d", s.Total, len(entries))
	}
	counted := 0
	for _, n := range s.ByLevel {
		counted += n
	}
	if counted != s.Total {
		p.errorf("risk level counts sum to %d, want %d", counted, s.Total)
	}
	if s.Total > 0 && s.MaxSeverity < s.MeanSeverity {
		p.errorf("max severity %v below mean %v", s.MaxSeverity, s.MeanSeverity)
	}
	return p
}
