package http_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/safestride-client/internal/adapter/http"
	"github.com/couchcryptid/safestride-client/internal/adapter/predictapi"
	"github.com/couchcryptid/safestride-client/internal/adapter/sqlite"
	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/mockapi"
	"github.com/couchcryptid/safestride-client/internal/observability"
	"github.com/couchcryptid/safestride-client/internal/pipeline"
	"github.com/couchcryptid/safestride-client/internal/session"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingSubmitter struct {
	err error
}

func (f failingSubmitter) Submit(context.Context, domain.FormPayload) (domain.RiskAssessment, error) {
	return domain.RiskAssessment{}, f.err
}

type testEnv struct {
	srv     *httpadapter.Server
	session *session.Session
	metrics *observability.Metrics
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires the server to a mock backend and an in-memory store.
func newTestEnv(t *testing.T, opts ...func(*httpadapter.Deps)) *testEnv {
	t.Helper()
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	backend := httptest.NewServer(mockapi.NewHandler(logger))
	t.Cleanup(backend.Close)

	store, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess, err := session.Open(context.Background(), store, metrics, logger)
	require.NoError(t, err)

	client := predictapi.NewClient(backend.URL, 0, metrics, logger)
	deps := httpadapter.Deps{
		Submitter:   pipeline.New(client, sess.History(), logger, metrics),
		History:     sess.History(),
		Preferences: sess,
		Exporter:    export.NewExporter(metrics),
		Ready:       &mockReadiness{},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testEnv{srv: httpadapter.NewServer(":0", deps, logger), session: sess, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func (e *testEnv) predict(t *testing.T, form domain.FormPayload) domain.RiskAssessment {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/predict", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var a domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	return a
}

func TestHealthzReturns200(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	env := newTestEnv(t, func(d *httpadapter.Deps) {
		d.Ready = &mockReadiness{err: fmt.Errorf("backend degraded")}
	})

	rec := env.do(t, http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "backend degraded", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPredictRecordsHistory(t *testing.T) {
	env := newTestEnv(t)

	a := env.predict(t, mockapi.Examples()[1].Data)

	assert.Equal(t, domain.RiskHigh, a.RiskLevel)
	assert.NotEmpty(t, a.ID)

	rec := env.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, a.ID, entries[0].ID)
}

func TestPredictBackendValidationError(t *testing.T) {
	env := newTestEnv(t)
	form := mockapi.DefaultFeatures()
	form["Start_Lat"] = 120

	rec := env.do(t, http.MethodPost, "/api/predict", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "less than or equal to 90")
	assert.Equal(t, 0, env.session.History().Len())
}

func TestPredictErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"in flight", domain.ErrPredictionInFlight, http.StatusConflict},
		{"network", &domain.NetworkError{Err: io.EOF}, http.StatusBadGateway},
		{"backend 500", &domain.ServerError{Status: 500, Message: "Prediction failed"}, http.StatusBadGateway},
		{"backend 400", &domain.ServerError{Status: 400, Message: "bad input"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(d *httpadapter.Deps) { d.Submitter = failingSubmitter{err: tt.err} })

			rec := env.do(t, http.MethodPost, "/api/predict", domain.FormPayload{})

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestPredictRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()

	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistorySearchAndClear(t *testing.T) {
	env := newTestEnv(t)
	ex := mockapi.Examples()
	env.predict(t, ex[0].Data)
	env.predict(t, ex[1].Data)

	rec := env.do(t, http.MethodGet, "/api/history?level=high", nil)
	var entries []domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, domain.RiskHigh, entries[0].RiskLevel)

	rec = env.do(t, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.session.History().Len())
}

func TestGetAssessmentNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/history/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	a := env.predict(t, mockapi.Examples()[0].Data)

	rec := env.do(t, http.MethodGet, "/api/history/export.csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "safestride-history-")
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Timestamp", "Risk Level", "Severity Score", "Confidence"}, records[0])
	assert.Equal(t, a.TimestampString(), records[1][0])
	assert.Equal(t, "85.00%", records[1][3])
}

func TestReportPDF(t *testing.T) {
	env := newTestEnv(t)
	a := env.predict(t, mockapi.Examples()[1].Data)

	rec := env.do(t, http.MethodGet, "/api/history/"+a.ID+"/report.pdf", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "SafeStride_Risk_Report_")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestCompare(t *testing.T) {
	env := newTestEnv(t)
	ex := mockapi.Examples()
	first := env.predict(t, ex[0].Data)
	second := env.predict(t, ex[1].Data)

	rec := env.do(t, http.MethodPost, "/api/compare", map[string]any{"ids": []string{second.ID, first.ID}})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Older      domain.RiskAssessment   `json:"older"`
		Newer      domain.RiskAssessment   `json:"newer"`
		Comparison domain.ComparisonResult `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, first.ID, body.Older.ID)
	assert.Equal(t, second.ID, body.Newer.ID)
	assert.Equal(t, domain.Compare(first, second), body.Comparison)

	rec = env.do(t, http.MethodPost, "/api/compare?format=pdf", map[string]any{"ids": []string{first.ID, second.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "safestride-comparison-")
}

func TestCompareRejectsInvalidSelection(t *testing.T) {
	env := newTestEnv(t)
	a := env.predict(t, mockapi.Examples()[0].Data)
	b := env.predict(t, mockapi.Examples()[1].Data)
	c := env.predict(t, mockapi.Examples()[0].Data)

	for _, ids := range [][]string{{a.ID}, {a.ID, b.ID, c.ID}} {
		rec := env.do(t, http.MethodPost, "/api/compare", map[string]any{"ids": ids})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	assert.Equal(t, 3, env.session.History().Len())
}

func TestTheme(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/theme", nil)
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/theme", map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())
	assert.Equal(t, session.ThemeDark, env.session.Theme())

	rec = env.do(t, http.MethodPut, "/api/theme", map[string]string{"theme": "sepia"})
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())
}
