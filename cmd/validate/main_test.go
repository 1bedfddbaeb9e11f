package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/safestride-client/internal/adapter/sqlite"
	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/mockapi"
)

func TestRun_ValidHistoryPasses(t *testing.T) {
	raw, err := json.Marshal(mockapi.SampleHistory(5, domain.ShapeBinary))
	require.NoError(t, err)

	var out bytes.Buffer
	code := run(&out, raw)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Entries: 5 (cap 10)")
}

func TestRun_CorruptRecordFails(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, []byte("{not json"))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Phase 1: Record decodes")
	assert.NotContains(t, out.String(), "Phase 2")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_InvariantViolationsReported(t *testing.T) {
	entries := mockapi.SampleHistory(3, domain.ShapeLegacy)
	entries[2].ID = entries[0].ID
	entries[1].Confidence = 1.5
	raw, err := json.Marshal(entries)
	require.NoError(t, err)

	var out bytes.Buffer
	code := run(&out, raw)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "duplicate id")
	assert.Contains(t, out.String(), "confidence 1.5 outside [0, 1]")
}

func TestLoadRecord_FromDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, domain.HistoryKey, []byte(`[]`)))
	require.NoError(t, store.Close())

	raw, err := loadRecord(ctx, "", path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLoadRecord_MissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := loadRecord(context.Background(), filepath.Join(dir, "absent.json"), "")
	require.Error(t, err)

	_, err = loadRecord(context.Background(), "", filepath.Join(dir, "absent.db"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "absent.db"))
	assert.True(t, os.IsNotExist(statErr), "validation never creates a database")
}
