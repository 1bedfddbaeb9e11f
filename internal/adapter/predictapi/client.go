// Package predictapi is the HTTP client for the SafeStride prediction backend.
package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Prediction outcomes recorded in the predictions_total metric.
const (
	outcomeSuccess      = "success"
	outcomeNetworkError = "network_error"
	outcomeServerError  = "server_error"
)

// Client calls the prediction API. Every call either returns the decoded
// body or fails with *domain.NetworkError or *domain.ServerError. Requests
// are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a prediction API client. A non-positive timeout means
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Predict submits one form and returns the raw response body.
func (c *Client) Predict(ctx context.Context, form domain.FormPayload) (domain.RawResponse, error) {
	start := time.Now()
	body, err := c.do(ctx, http.MethodPost, "/api/predict", form)
	c.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	c.metrics.Predictions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return body, nil
}

// BatchResponse is the body of POST /api/batch-predict.
type BatchResponse struct {
	Results          []domain.RawResponse `json:"results"`
	TotalPredictions int                  `json:"total_predictions"`
}

// BatchPredict submits several forms in one request and returns each raw
// result in request order.
func (c *Client) BatchPredict(ctx context.Context, forms []domain.FormPayload) ([]domain.RawResponse, error) {
	payload := struct {
		Predictions []domain.FormPayload `json:"predictions"`
	}{Predictions: forms}

	start := time.Now()
	body, err := c.do(ctx, http.MethodPost, "/api/batch-predict", payload)
	c.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	c.metrics.Predictions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	var resp BatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}
	return resp.Results, nil
}

// Health backend statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status      string         `json:"status"`
	APIVersion  string         `json:"api_version,omitempty"`
	Message     string         `json:"message,omitempty"`
	Error       string         `json:"error,omitempty"`
	ModelStatus map[string]any `json:"model_status,omitempty"`
}

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var h HealthStatus
	if err := c.getJSON(ctx, "/api/health", &h); err != nil {
		return HealthStatus{}, err
	}
	return h, nil
}

// CheckReadiness reports an error unless the backend says it is healthy.
func (c *Client) CheckReadiness(ctx context.Context) error {
	h, err := c.Health(ctx)
	if err != nil {
		return err
	}
	if h.Status != StatusHealthy {
		if h.Message != "" {
			return fmt.Errorf("prediction API %s: %s", h.Status, h.Message)
		}
		return fmt.Errorf("prediction API %s", h.Status)
	}
	return nil
}

// ModelInfo is the body of GET /api/metrics.
type ModelInfo struct {
	ModelName    string         `json:"model_name"`
	ModelVersion string         `json:"model_version"`
	Dataset      string         `json:"dataset,omitempty"`
	Classes      []string       `json:"classes,omitempty"`
	Metrics      map[string]any `json:"metrics"`
}

// ModelMetrics fetches the backend model description and scores.
func (c *Client) ModelMetrics(ctx context.Context) (ModelInfo, error) {
	var m ModelInfo
	if err := c.getJSON(ctx, "/api/metrics", &m); err != nil {
		return ModelInfo{}, err
	}
	return m, nil
}

// FeatureTemplate fetches a form prefilled with the backend's default values.
func (c *Client) FeatureTemplate(ctx context.Context) (domain.FormPayload, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/feature-template", nil)
	if err != nil {
		return nil, err
	}

	// The template is usually wrapped with a description and examples; a bare
	// form is accepted too.
	var wrapped struct {
		RequiredFeatures domain.FormPayload `json:"required_features"`
		Template         domain.FormPayload `json:"template"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if len(wrapped.RequiredFeatures) > 0 {
			return wrapped.RequiredFeatures, nil
		}
		if len(wrapped.Template) > 0 {
			return wrapped.Template, nil
		}
	}
	var form domain.FormPayload
	if err := json.Unmarshal(body, &form); err != nil {
		return nil, fmt.Errorf("decode feature template: %w", err)
	}
	return form, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends one request and classifies failures. A transport failure or
// timeout is a NetworkError; any non-2xx status is a ServerError.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "path", path, "error", err)
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	c.logger.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.ServerError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage extracts "detail", then "message", from an error body, falling
// back to a generic text. Non-string details are rendered as compact JSON.
func errorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.ServerErrorFallback
	}
	for _, key := range []string{"detail", "message"} {
		if msg := messageText(fields[key]); msg != "" {
			return msg
		}
	}
	return domain.ServerErrorFallback
}

func messageText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

func outcome(err error) string {
	var netErr *domain.NetworkError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &netErr):
		return outcomeNetworkError
	default:
		return outcomeServerError
	}
}
