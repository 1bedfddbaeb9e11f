// Package session holds the client state that outlives a single command:
// the theme preference and the prediction history. Both are loaded once when
// the session opens and saved whenever they change.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/history"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps a stored or user-supplied value to a Theme. Only "dark"
// selects the dark theme.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Session is the top-level client state.
type Session struct {
	store   domain.KeyValueStore
	history *history.Manager
	logger  *slog.Logger

	mu    sync.Mutex
	theme Theme
}

// Open loads the theme and history from store.
func Open(ctx context.Context, store domain.KeyValueStore, metrics *observability.Metrics, logger *slog.Logger) (*Session, error) {
	s := &Session{
		store:   store,
		history: history.NewManager(store, metrics, logger),
		logger:  logger,
		theme:   ThemeLight,
	}

	raw, found, err := store.Get(ctx, domain.ThemeKey)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	if found {
		s.theme = ParseTheme(string(raw))
	}

	if err := s.history.Load(ctx); err != nil {
		return nil, err
	}
	logger.Debug("session opened", "theme", s.theme, "history_entries", s.history.Len())
	return s, nil
}

// History returns the session's history manager.
func (s *Session) History() *history.Manager { return s.history }

// Theme returns the current theme.
func (s *Session) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme changes the theme and persists it. Setting the current theme
// again writes nothing.
func (s *Session) SetTheme(ctx context.Context, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != ThemeDark {
		t = ThemeLight
	}
	if t == s.theme {
		return nil
	}
	if err := s.store.Put(ctx, domain.ThemeKey, []byte(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.theme = t
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Session) ToggleTheme(ctx context.Context) (Theme, error) {
	next := ThemeDark
	if s.Theme() == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(ctx, next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}
