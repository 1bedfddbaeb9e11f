package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

// Predictor sends forms to the prediction API.
type Predictor interface {
	Predict(ctx context.Context, form domain.FormPayload) (domain.RawResponse, error)
	BatchPredict(ctx context.Context, forms []domain.FormPayload) ([]domain.RawResponse, error)
}

// Enricher fills in derived form fields before submission.
type Enricher interface {
	Enrich(ctx context.Context, form domain.FormPayload) domain.FormPayload
}

// Recorder stores a new assessment in history.
type Recorder interface {
	Add(ctx context.Context, a domain.RiskAssessment) error
}

// Publisher forwards a recorded assessment downstream.
type Publisher interface {
	Publish(ctx context.Context, a domain.RiskAssessment) error
}

// Pipeline runs the enrich, predict, normalize, record and publish steps for
// a submission. Only one submission runs at a time.
type Pipeline struct {
	predictor Predictor
	enricher  Enricher
	recorder  Recorder
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	busy      atomic.Bool
}

// Option configures optional pipeline stages.
type Option func(*Pipeline)

// WithEnricher sets the form enricher.
func WithEnricher(e Enricher) Option {
	return func(p *Pipeline) { p.enricher = e }
}

// WithPublisher sets the downstream publisher.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// New creates a Pipeline. Enrichment and publishing are off unless enabled
// by options.
func New(predictor Predictor, recorder Recorder, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		predictor: predictor,
		recorder:  recorder,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Busy reports whether a submission is in progress.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Submit predicts one form and records the normalized assessment. It fails
// with domain.ErrPredictionInFlight while another submission runs, and
// returns the prediction client's error unwrapped so its message can be shown
// as is. History is untouched in both cases.
func (p *Pipeline) Submit(ctx context.Context, form domain.FormPayload) (domain.RiskAssessment, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return domain.RiskAssessment{}, domain.ErrPredictionInFlight
	}
	defer p.busy.Store(false)

	form = p.enrich(ctx, form)

	raw, err := p.predictor.Predict(ctx, form)
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	a := p.normalize(raw)
	p.record(ctx, a)
	return a, nil
}

// SubmitBatch predicts several forms in one request. Results are recorded in
// the order returned, so the last one ends up newest in history.
func (p *Pipeline) SubmitBatch(ctx context.Context, forms []domain.FormPayload) ([]domain.RiskAssessment, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrPredictionInFlight
	}
	defer p.busy.Store(false)

	enriched := make([]domain.FormPayload, len(forms))
	for i, f := range forms {
		enriched[i] = p.enrich(ctx, f)
	}

	raws, err := p.predictor.BatchPredict(ctx, enriched)
	if err != nil {
		return nil, err
	}
	if len(raws) != len(forms) {
		p.logger.Warn("batch result count differs from request", "requested", len(forms), "returned", len(raws))
	}

	out := make([]domain.RiskAssessment, 0, len(raws))
	for _, raw := range raws {
		a := p.normalize(raw)
		p.record(ctx, a)
		out = append(out, a)
	}
	return out, nil
}

func (p *Pipeline) enrich(ctx context.Context, form domain.FormPayload) domain.FormPayload {
	if p.enricher == nil {
		return form
	}
	return p.enricher.Enrich(ctx, form)
}

func (p *Pipeline) normalize(raw domain.RawResponse) domain.RiskAssessment {
	a := domain.Normalize(raw)
	p.metrics.Normalized.WithLabelValues(string(a.Shape)).Inc()
	if a.Shape == domain.ShapeUnknown {
		p.logger.Warn("prediction response has no recognized fields", "assessment_id", a.ID)
	}
	return a
}

// record adds a to history and publishes it. Neither failure is returned:
// the prediction itself succeeded and is still shown to the caller.
func (p *Pipeline) record(ctx context.Context, a domain.RiskAssessment) {
	if err := p.recorder.Add(ctx, a); err != nil {
		p.logger.Error("history save failed", "assessment_id", a.ID, "error", err)
	}
	p.logger.Info("prediction recorded",
		"assessment_id", a.ID,
		"risk_level", a.RiskLevel,
		"confidence", a.Confidence,
		"shape", a.Shape,
	)

	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, a); err != nil {
		p.logger.Error("assessment publish failed", "assessment_id", a.ID, "error", err)
	}
}
