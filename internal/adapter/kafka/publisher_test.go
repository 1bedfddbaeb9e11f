package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

type fakeWriter struct {
	failures int
	err      error
	calls    int
	written  []kafkago.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.calls++
	if w.calls <= w.failures {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testPublisher(w messageWriter) *Publisher {
	p := newPublisher(w, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.initialBackoff = time.Millisecond
	p.maxBackoff = 2 * time.Millisecond
	return p
}

func testAssessment() domain.RiskAssessment {
	return domain.RiskAssessment{
		ID:            "0193a6f2-0000-7000-8000-000000000001",
		Timestamp:     time.Date(2025, 11, 18, 16, 28, 45, 120000000, time.UTC),
		RiskLevel:     domain.RiskHigh,
		SeverityScore: 1,
		Confidence:    0.83,
		Shape:         domain.ShapeBinary,
	}
}

func TestSerializeToMessage(t *testing.T) {
	a := testAssessment()

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte(a.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"risk_level":"High"`)
	assert.Contains(t, string(msg.Value), `"confidence":0.83`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, HeaderRiskLevel, msg.Headers[0].Key)
	assert.Equal(t, []byte("High"), msg.Headers[0].Value)
	assert.Equal(t, HeaderRecordedAt, msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-11-18T16:28:45Z"), msg.Headers[1].Value)
}

func TestSerializeToMessage_Unencodable(t *testing.T) {
	a := testAssessment()
	a.Confidence = math.Inf(1)

	_, err := serializeToMessage(a)
	require.Error(t, err)
}

func TestPublisher_Success(t *testing.T) {
	w := &fakeWriter{}
	p := testPublisher(w)

	require.NoError(t, p.Publish(context.Background(), testAssessment()))

	assert.Equal(t, 1, w.calls)
	require.Len(t, w.written, 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(p.metrics.PublishErrors))
}

func TestPublisher_RetriesThenSucceeds(t *testing.T) {
	w := &fakeWriter{failures: 2, err: errors.New("leader not available")}
	p := testPublisher(w)

	require.NoError(t, p.Publish(context.Background(), testAssessment()))

	assert.Equal(t, 3, w.calls)
	assert.Len(t, w.written, 1)
}

func TestPublisher_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10, err: errors.New("broker down")}
	p := testPublisher(w)

	err := p.Publish(context.Background(), testAssessment())

	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
	assert.Equal(t, defaultAttempts, w.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.PublishErrors))
}

func TestPublisher_ContextCanceledStopsRetrying(t *testing.T) {
	w := &fakeWriter{failures: 10, err: errors.New("broker down")}
	p := testPublisher(w)
	p.initialBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, testAssessment())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, w.calls)
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, testPublisher(w).Close())
	assert.True(t, w.closed)
}
