package history

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

// MaxLegacySeverity is the top of the widest severity scale a backend has used.
const MaxLegacySeverity = 3.0

// Issue is one integrity problem found in a persisted history.
type Issue struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	if i.ID == "" {
		return fmt.Sprintf("entry %d: %s", i.Index, i.Problem)
	}
	return fmt.Sprintf("entry %d (%s): %s", i.Index, i.ID, i.Problem)
}

// Validate checks a decoded history against the collection invariants: at
// most Capacity entries, unique non-empty ids, newest first, known risk
// levels and scores within range. It returns nil when nothing is wrong.
func Validate(entries []domain.RiskAssessment) []Issue {
	var issues []Issue
	add := func(i int, id, format string, args ...any) {
		issues = append(issues, Issue{Index: i, ID: id, Problem: fmt.Sprintf(format, args...)})
	}

	if len(entries) > Capacity {
		add(-1, "", "%d entries exceed the cap of %d", len(entries), Capacity)
	}

	seen := make(map[string]int, len(entries))
	for i, a := range entries {
		switch prev, dup := seen[a.ID]; {
		case a.ID == "":
			add(i, "", "missing id")
		case dup:
			add(i, a.ID, "duplicate id, first seen at entry %d", prev)
		default:
			seen[a.ID] = i
		}

		if a.Timestamp.IsZero() {
			add(i, a.ID, "missing timestamp")
		} else if i > 0 && !entries[i-1].Timestamp.IsZero() && a.Timestamp.After(entries[i-1].Timestamp) {
			add(i, a.ID, "newer than the entry before it")
		}

		if !slices.Contains(domain.RiskLevels, a.RiskLevel) {
			add(i, a.ID, "unknown risk level %q", a.RiskLevel)
		}
		if !inRange(a.SeverityScore, 0, MaxLegacySeverity) {
			add(i, a.ID, "severity %v outside [0, %v]", a.SeverityScore, MaxLegacySeverity)
		}
		if !inRange(a.Confidence, 0, 1) {
			add(i, a.ID, "confidence %v outside [0, 1]", a.Confidence)
		}
		for _, label := range slices.Sorted(maps.Keys(a.ProbabilityDistribution)) {
			if p := a.ProbabilityDistribution[label]; !inRange(p, 0, 1) {
				add(i, a.ID, "probability %q = %v outside [0, 1]", label, p)
			}
		}
	}
	return issues
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
