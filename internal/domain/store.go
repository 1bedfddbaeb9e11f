package domain

import "context"

// Storage keys for the persisted client state.
const (
	ThemeKey   = "safestride_theme"
	HistoryKey = "safestride_history"
)

// KeyValueStore persists small opaque records under string keys. Get reports
// found=false for a missing key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
