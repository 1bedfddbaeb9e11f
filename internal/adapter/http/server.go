package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/session"
)

// Submitter runs a prediction and records the result.
type Submitter interface {
	Submit(ctx context.Context, form domain.FormPayload) (domain.RiskAssessment, error)
}

// History is the read and clear surface of the history manager.
type History interface {
	Get(id string) (domain.RiskAssessment, error)
	Search(query, level string) []domain.RiskAssessment
	ComparisonPair(ids []string) (older, newer domain.RiskAssessment, err error)
	Clear(ctx context.Context) error
}

// Preferences holds the theme preference.
type Preferences interface {
	Theme() session.Theme
	SetTheme(ctx context.Context, t session.Theme) error
}

// Deps are the components the API routes operate on.
type Deps struct {
	Submitter   Submitter
	History     History
	Preferences Preferences
	Exporter    *export.Exporter
	Ready       sharedobs.ReadinessChecker
}

// Server exposes the local API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the operational routes and the /api routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // predictions may take up to the client timeout
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/history", s.handleListHistory)
	mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	mux.HandleFunc("GET /api/history/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetAssessment)
	mux.HandleFunc("GET /api/history/{id}/report.pdf", s.handleReportPDF)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("PUT /api/theme", s.handlePutTheme)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
