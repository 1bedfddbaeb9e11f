// Package history keeps the bounded, newest-first collection of risk
// assessments and persists it through a key-value store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

// Capacity is the maximum number of assessments kept.
const Capacity = 10

// Manager owns the history collection. Entries are ordered newest first and
// ids are unique. Every mutation is persisted before it returns.
type Manager struct {
	store   domain.KeyValueStore
	metrics *observability.Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	entries []domain.RiskAssessment
}

// NewManager creates an empty manager. Call Load to rehydrate persisted state.
func NewManager(store domain.KeyValueStore, metrics *observability.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		metrics: metrics,
		logger:  logger,
		entries: []domain.RiskAssessment{},
	}
}

// Load replaces the in-memory collection with the persisted one. A missing
// record yields an empty history. A record that fails to decode is logged
// and discarded; only store failures are returned.
func (m *Manager) Load(ctx context.Context) error {
	raw, found, err := m.store.Get(ctx, domain.HistoryKey)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	entries := []domain.RiskAssessment{}
	if found {
		decoded, err := Decode(raw)
		if err != nil {
			m.logger.Warn("discarding stored history", "error", err)
		} else {
			entries = sanitize(decoded)
		}
	}

	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	m.metrics.HistoryEntries.Set(float64(len(entries)))
	return nil
}

// Decode parses a persisted history record.
func Decode(raw []byte) ([]domain.RiskAssessment, error) {
	var entries []domain.RiskAssessment
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageCorrupt, err)
	}
	return entries, nil
}

// sanitize drops duplicate or empty ids and anything past Capacity.
func sanitize(entries []domain.RiskAssessment) []domain.RiskAssessment {
	out := make([]domain.RiskAssessment, 0, min(len(entries), Capacity))
	seen := make(map[string]bool, len(entries))
	for _, a := range entries {
		if a.ID == "" || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
		if len(out) == Capacity {
			break
		}
	}
	return out
}

// Add prepends a to the collection, evicting the oldest entries beyond
// Capacity, and persists the result. Re-adding a known id moves it to the
// front. The in-memory collection is updated even if persisting fails.
func (m *Manager) Add(ctx context.Context, a domain.RiskAssessment) error {
	m.mu.Lock()
	next := make([]domain.RiskAssessment, 0, Capacity)
	next = append(next, a)
	for _, e := range m.entries {
		if e.ID != a.ID {
			next = append(next, e)
		}
	}
	evicted := 0
	if len(next) > Capacity {
		evicted = len(next) - Capacity
		next = next[:Capacity]
	}
	m.entries = next
	snapshot := slices.Clone(next)
	m.mu.Unlock()

	m.metrics.HistoryEntries.Set(float64(len(snapshot)))
	if evicted > 0 {
		m.metrics.HistoryEvictions.Add(float64(evicted))
		m.logger.Debug("history evicted oldest entries", "count", evicted)
	}
	return m.save(ctx, snapshot)
}

// Clear empties the collection and removes the persisted record.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.entries = []domain.RiskAssessment{}
	m.mu.Unlock()

	m.metrics.HistoryEntries.Set(0)
	if err := m.store.Delete(ctx, domain.HistoryKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (m *Manager) save(ctx context.Context, entries []domain.RiskAssessment) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := m.store.Put(ctx, domain.HistoryKey, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// All returns a copy of the collection, newest first.
func (m *Manager) All() []domain.RiskAssessment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.entries)
}

// Len returns the number of entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Get returns the entry with the given id or domain.ErrNotFound.
func (m *Manager) Get(id string) (domain.RiskAssessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.entries {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.RiskAssessment{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

// Filter returns the entries matching pred, in collection order.
func (m *Manager) Filter(pred func(domain.RiskAssessment) bool) []domain.RiskAssessment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.RiskAssessment{}
	for _, a := range m.entries {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}

// LevelAll disables the level filter of Search.
const LevelAll = "all"

// Search returns entries whose risk level or timestamp contains query
// (case-insensitive) and whose risk level equals level. An empty query
// matches everything, as does an empty level or LevelAll.
func (m *Manager) Search(query, level string) []domain.RiskAssessment {
	return m.Filter(Matcher(query, level))
}

// Matcher builds the Search predicate.
func Matcher(query, level string) func(domain.RiskAssessment) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	level = strings.TrimSpace(level)
	anyLevel := level == "" || strings.EqualFold(level, LevelAll)

	return func(a domain.RiskAssessment) bool {
		if !anyLevel && !strings.EqualFold(string(a.RiskLevel), level) {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(string(a.RiskLevel)), q) ||
			strings.Contains(strings.ToLower(a.TimestampString()), q)
	}
}

// Select returns the entries whose ids are in ids, in collection order.
// Unknown ids are ignored.
func (m *Manager) Select(ids []string) []domain.RiskAssessment {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.Filter(func(a domain.RiskAssessment) bool { return want[a.ID] })
}

// ComparisonPair resolves a comparison selection. It fails with
// *domain.InvalidSelectionError unless ids name exactly two distinct entries,
// and returns them as (older, newer) so comparison deltas read forward in time.
// The collection is never modified.
func (m *Manager) ComparisonPair(ids []string) (older, newer domain.RiskAssessment, err error) {
	distinct := slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(distinct) != 2 {
		return older, newer, &domain.InvalidSelectionError{Count: len(distinct)}
	}
	selected := m.Select(distinct)
	if len(selected) != 2 {
		return older, newer, &domain.InvalidSelectionError{Count: len(selected)}
	}
	return selected[1], selected[0], nil
}

// IsInvalidSelection reports whether err is a selection guard failure.
func IsInvalidSelection(err error) bool {
	var sel *domain.InvalidSelectionError
	return errors.As(err, &sel)
}
