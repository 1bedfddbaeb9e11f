package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/history"
	"github.com/couchcryptid/safestride-client/internal/mockapi"
)

func resetFlags() {
	rootFlags.envFile = ""
	rootFlags.logLevel = "warn"
	rootFlags.format = formatTable
	predictFlags.file, predictFlags.pdf = "", ""
	batchFlags.file = ""
	historyFlags.query, historyFlags.level, historyFlags.out = "", history.LevelAll, ""
	compareFlags.pdf = ""
	reportFlags.out = ""
	templateFlags.out = ""
	serveFlags.addr = ""
}

// setupCLI points the CLI at a mock backend and a fresh database in a temp dir.
func setupCLI(t *testing.T) string {
	t.Helper()
	backend := httptest.NewServer(mockapi.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(backend.Close)

	dir := t.TempDir()
	t.Setenv("SAFESTRIDE_API_URL", backend.URL)
	t.Setenv("SAFESTRIDE_DB_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("MAPBOX_TOKEN", "")
	t.Setenv("KAFKA_BROKERS", "")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeForm(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func listHistory(t *testing.T) []domain.RiskAssessment {
	t.Helper()
	out, err := execute(t, "history", "list", "--format", "json")
	require.NoError(t, err)
	var entries []domain.RiskAssessment
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	return entries
}

func TestPredict_RecordsAssessment(t *testing.T) {
	dir := setupCLI(t)
	examples := mockapi.Examples()
	form := writeForm(t, dir, "night.json", examples[1].Data)
	pdf := filepath.Join(dir, "report.pdf")

	out, err := execute(t, "predict", "-f", form, "--pdf", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "Risk Level")
	assert.Contains(t, out, string(domain.RiskHigh))

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries := listHistory(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.RiskHigh, entries[0].RiskLevel)
}

func TestPredict_RequiresFile(t *testing.T) {
	setupCLI(t)
	_, err := execute(t, "predict")
	require.Error(t, err)
}

func TestPredict_RejectsMultipleForms(t *testing.T) {
	dir := setupCLI(t)
	examples := mockapi.Examples()
	form := writeForm(t, dir, "both.json", []domain.FormPayload{examples[0].Data, examples[1].Data})

	_, err := execute(t, "predict", "-f", form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
	assert.Empty(t, listHistory(t))
}

func TestBatch_RecordsInOrder(t *testing.T) {
	dir := setupCLI(t)
	examples := mockapi.Examples()
	form := writeForm(t, dir, "both.json", []domain.FormPayload{examples[0].Data, examples[1].Data})

	_, err := execute(t, "batch", "-f", form)
	require.NoError(t, err)

	entries := listHistory(t)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RiskHigh, entries[0].RiskLevel, "last form ends up newest")
	assert.Equal(t, domain.RiskLow, entries[1].RiskLevel)
}

func TestHistory_FilterExportStatsClear(t *testing.T) {
	dir := setupCLI(t)
	examples := mockapi.Examples()
	form := writeForm(t, dir, "both.json", []domain.FormPayload{examples[0].Data, examples[1].Data})
	_, err := execute(t, "batch", "-f", form)
	require.NoError(t, err)

	out, err := execute(t, "history", "list", "--level", "high", "--format", "json")
	require.NoError(t, err)
	var high []domain.RiskAssessment
	require.NoError(t, json.Unmarshal([]byte(out), &high))
	require.Len(t, high, 1)
	assert.Equal(t, domain.RiskHigh, high[0].RiskLevel)

	csvPath := filepath.Join(dir, "history.csv")
	out, err = execute(t, "history", "export", "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 predictions")
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Timestamp,Risk Level,Severity Score,Confidence")

	out, err = execute(t, "history", "stats", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries")
	assert.Contains(t, out, "|")

	out, err = execute(t, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 2 predictions.")

	out, err = execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No predictions yet.")
}

func TestCompare(t *testing.T) {
	dir := setupCLI(t)
	examples := mockapi.Examples()
	form := writeForm(t, dir, "both.json", []domain.FormPayload{examples[0].Data, examples[1].Data})
	_, err := execute(t, "batch", "-f", form)
	require.NoError(t, err)
	entries := listHistory(t)
	require.Len(t, entries, 2)

	out, err := execute(t, "compare", entries[0].ID, entries[1].ID, "--format", "json")
	require.NoError(t, err)
	var got comparison
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, entries[1].ID, got.Older.ID)
	assert.Equal(t, entries[0].ID, got.Newer.ID)
	assert.Positive(t, got.Comparison.SeverityDelta)

	_, err = execute(t, "compare", entries[0].ID)
	require.Error(t, err)
	assert.True(t, history.IsInvalidSelection(err))
}

func TestReport_UnknownID(t *testing.T) {
	setupCLI(t)
	_, err := execute(t, "report", "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatus(t *testing.T) {
	setupCLI(t)
	out, err := execute(t, "status", "--format", "json")
	require.NoError(t, err)

	var st status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "healthy", st.Health.Status)
	require.NotNil(t, st.Model)
	assert.Equal(t, mockapi.ModelName, st.Model.ModelName)
	assert.Equal(t, "light", st.Theme)
}

func TestTemplate_RoundTripsThroughPredict(t *testing.T) {
	dir := setupCLI(t)
	path := filepath.Join(dir, "form.yaml")

	_, err := execute(t, "template", "--out", path)
	require.NoError(t, err)

	_, err = execute(t, "predict", "-f", path)
	require.NoError(t, err)
	assert.Len(t, listHistory(t), 1)
}

func TestTheme(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = execute(t, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = execute(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out, "preference persists between runs")

	_, err = execute(t, "theme", "purple")
	require.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	setupCLI(t)
	_, err := execute(t, "history", "list", "--format", "xml")
	require.Error(t, err)
}
