package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

// LocationEnricher implements Enricher by filling missing location fields
// through a geocoder.
type LocationEnricher struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewLocationEnricher creates a LocationEnricher. Pass a nil geocoder to
// disable enrichment.
func NewLocationEnricher(geocoder domain.Geocoder, logger *slog.Logger) *LocationEnricher {
	return &LocationEnricher{geocoder: geocoder, logger: logger}
}

func (e *LocationEnricher) Enrich(ctx context.Context, form domain.FormPayload) domain.FormPayload {
	return domain.EnrichFormLocation(ctx, form, e.geocoder, e.logger)
}
