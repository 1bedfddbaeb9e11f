package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/history"
	"github.com/couchcryptid/safestride-client/internal/session"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type compareRequest struct {
	IDs []string `json:"ids"`
}

type compareResponse struct {
	Older      domain.RiskAssessment   `json:"older"`
	Newer      domain.RiskAssessment   `json:"newer"`
	Comparison domain.ComparisonResult `json:"comparison"`
}

type themeBody struct {
	Theme session.Theme `json:"theme"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var form domain.FormPayload
	if !decodeBody(w, r, &form) {
		return
	}
	a, err := s.deps.Submitter.Submit(r.Context(), form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sharedobs.WriteJSON(w, http.StatusOK, s.deps.History.Search(q.Get("q"), q.Get("level")))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.History.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.History.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := s.deps.History.Search(q.Get("q"), q.Get("level"))

	var buf bytes.Buffer
	if err := s.deps.Exporter.HistoryCSV(&buf, entries); err != nil {
		s.writeError(w, err)
		return
	}
	writeDocument(w, "text/csv", export.HistoryCSVFilename(domain.Now()), buf.Bytes())
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.History.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Exporter.AssessmentPDF(&buf, a); err != nil {
		s.writeError(w, err)
		return
	}
	writeDocument(w, "application/pdf", export.ReportFilename(domain.Now()), buf.Bytes())
}

// handleCompare answers with JSON, or with the comparison report when the
// format query parameter is "pdf".
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	older, newer, err := s.deps.History.ComparisonPair(req.IDs)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == export.FormatPDF {
		var buf bytes.Buffer
		if err := s.deps.Exporter.ComparisonPDF(&buf, older, newer); err != nil {
			s.writeError(w, err)
			return
		}
		writeDocument(w, "application/pdf", export.ComparisonFilename(domain.Now()), buf.Bytes())
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, compareResponse{
		Older:      older,
		Newer:      newer,
		Comparison: domain.Compare(older, newer),
	})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, themeBody{Theme: s.deps.Preferences.Theme()})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if !decodeBody(w, r, &body) {
		return
	}
	t := session.ParseTheme(string(body.Theme))
	if err := s.deps.Preferences.SetTheme(r.Context(), t); err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, themeBody{Theme: t})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeDocument(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeError maps client errors to status codes. Prediction failures keep
// the message the prediction client produced.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		netErr *domain.NetworkError
		srvErr *domain.ServerError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrPredictionInFlight):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case history.IsInvalidSelection(err):
		status = http.StatusBadRequest
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
	case errors.As(err, &srvErr):
		status = http.StatusBadGateway
		if srvErr.Status >= 400 && srvErr.Status < 500 {
			status = srvErr.Status
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("api request failed", "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, errorBody{Error: err.Error()})
}
