package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

// Handler serves the backend routes the client consumes.
type Handler struct {
	mux      *http.ServeMux
	shape    domain.Shape
	latency  time.Duration
	degraded bool
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithShape selects the response shape. The default is binary.
func WithShape(s domain.Shape) Option {
	return func(h *Handler) { h.shape = s }
}

// WithLatency delays every prediction response.
func WithLatency(d time.Duration) Option {
	return func(h *Handler) { h.latency = d }
}

// WithDegraded reports the model as not loaded on /api/health.
func WithDegraded() Option {
	return func(h *Handler) { h.degraded = true }
}

// NewHandler creates the mock backend.
func NewHandler(logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{mux: http.NewServeMux(), shape: domain.ShapeBinary, logger: logger}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("POST /api/predict", h.handlePredict)
	h.mux.HandleFunc("POST /api/batch-predict", h.handleBatch)
	h.mux.HandleFunc("GET /api/health", h.handleHealth)
	h.mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	h.mux.HandleFunc("GET /api/feature-template", h.handleTemplate)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("mock request", "method", r.Method, "path", r.URL.Path)
	h.mux.ServeHTTP(w, r)
}

// fieldError mirrors the backend's validation error entries.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

var ranges = []struct {
	key    string
	lo, hi float64
}{
	{"Start_Lat", -90, 90},
	{"Start_Lng", -180, 180},
	{"Humidity(%)", 0, 100},
	{"Hour", 0, 23},
	{"Day_of_Week", 0, 6},
	{"Month", 1, 12},
}

func validate(form domain.FormPayload) []fieldError {
	var errs []fieldError
	for _, r := range ranges {
		v, ok := number(form, r.key)
		if !ok {
			continue
		}
		switch {
		case v < r.lo:
			errs = append(errs, fieldError{Loc: []string{"body", r.key}, Msg: fmt.Sprintf("Input should be greater than or equal to %g", r.lo), Type: "greater_than_equal"})
		case v > r.hi:
			errs = append(errs, fieldError{Loc: []string{"body", r.key}, Msg: fmt.Sprintf("Input should be less than or equal to %g", r.hi), Type: "less_than_equal"})
		}
	}
	return errs
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var form domain.FormPayload
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return
	}
	if errs := validate(form); len(errs) > 0 {
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
		return
	}
	if !retry.SleepWithContext(r.Context(), h.latency) {
		return
	}
	writeRaw(w, Respond(form, h.shape))
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Predictions []domain.FormPayload `json:"predictions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return
	}
	for i, form := range req.Predictions {
		if errs := validate(form); len(errs) > 0 {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"detail": fmt.Sprintf("prediction %d: %s %s", i, errs[0].Loc[1], errs[0].Msg),
			})
			return
		}
	}
	if !retry.SleepWithContext(r.Context(), h.latency) {
		return
	}

	results := make([]json.RawMessage, len(req.Predictions))
	for i, form := range req.Predictions {
		results[i] = json.RawMessage(Respond(form, h.shape))
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"results":           results,
		"total_predictions": len(results),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status, message := "healthy", "SafeStride API is running"
	if h.degraded {
		status, message = "degraded", "Model not loaded"
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"api_version": APIVersion,
		"message":     message,
		"model_status": map[string]any{
			"model_loaded": !h.degraded,
			"model_type":   "mock",
		},
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"model_name":    ModelName,
		"model_version": ModelVersion,
		"dataset":       "US Accidents (2016-2023)",
		"classes":       []string{domain.LabelLowRisk, domain.LabelHighRisk},
		"metrics": map[string]float64{
			"test_accuracy": 0.8734,
			"f1_score":      0.8612,
			"roc_auc":       0.9301,
		},
	})
}

func (h *Handler) handleTemplate(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"required_features": DefaultFeatures(),
		"description":       "Mock binary model - predicts High Risk or Low Risk",
		"examples":          Examples(),
		"feature_count":     43,
		"input_features":    len(DefaultFeatures()),
	})
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
