package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/safestride-client/internal/config"
	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

// Header keys set on every published assessment.
const (
	HeaderRiskLevel  = "risk_level"
	HeaderRecordedAt = "recorded_at"
)

const (
	defaultAttempts       = 3
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces recorded assessments to a Kafka topic.
type Publisher struct {
	writer         messageWriter
	metrics        *observability.Metrics
	logger         *slog.Logger
	attempts       int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewPublisher creates a Kafka producer for the configured assessment topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, metrics, logger)
}

func newPublisher(w messageWriter, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:         w,
		metrics:        metrics,
		logger:         logger,
		attempts:       defaultAttempts,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
}

// Publish writes one assessment, retrying with exponential backoff. It
// returns the last error once every attempt has failed or ctx is done.
func (p *Publisher) Publish(ctx context.Context, a domain.RiskAssessment) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		p.metrics.PublishErrors.Inc()
		return err
	}

	backoff := p.initialBackoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			p.logger.Debug("assessment published", "assessment_id", a.ID, "attempt", attempt)
			return nil
		}
		if attempt >= p.attempts {
			break
		}
		p.logger.Warn("publish failed, retrying", "assessment_id", a.ID, "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			err = ctx.Err()
			break
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}

	p.metrics.PublishErrors.Inc()
	return fmt.Errorf("publish assessment %s: %w", a.ID, err)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an assessment into a Kafka message keyed by its id.
func serializeToMessage(a domain.RiskAssessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderRiskLevel, Value: []byte(a.RiskLevel)},
			{Key: HeaderRecordedAt, Value: []byte(a.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
