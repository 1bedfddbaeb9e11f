package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/observability"
)

const (
	placesEndpoint = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	maxBodyBytes   = 1 << 20
)

// APIError is a non-200 answer from Mapbox.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mapbox: status %d", e.Status)
	}
	return fmt.Sprintf("mapbox: status %d: %s", e.Status, e.Message)
}

// Client implements domain.Geocoder with the Mapbox Geocoding v5 API.
// Lookups are limited to US cities and localities, the area the prediction
// model covers.
type Client struct {
	token    string
	http     *http.Client
	endpoint string
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:    token,
		http:     &http.Client{Timeout: timeout},
		endpoint: placesEndpoint,
		metrics:  metrics,
		logger:   logger,
	}
}

// ForwardGeocode finds the coordinates of a city.
func (c *Client) ForwardGeocode(ctx context.Context, city, state string) (domain.GeocodingResult, error) {
	query := city
	if state != "" {
		query = city + ", " + state
	}
	return c.lookup(ctx, methodForward, query)
}

// ReverseGeocode finds the city at a coordinate.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	// Mapbox takes lon,lat.
	query := strconv.FormatFloat(lon, 'f', 6, 64) + "," + strconv.FormatFloat(lat, 'f', 6, 64)
	return c.lookup(ctx, methodReverse, query)
}

func (c *Client) lookup(ctx context.Context, method, query string) (domain.GeocodingResult, error) {
	start := time.Now()
	result, err := c.get(ctx, method, query)
	c.metrics.GeocodeAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case result.FormattedAddress == "":
		outcome = "empty"
	}
	c.metrics.GeocodeRequests.WithLabelValues(method, outcome).Inc()
	return result, err
}

func (c *Client) get(ctx context.Context, method, query string) (domain.GeocodingResult, error) {
	params := url.Values{
		"access_token": {c.token},
		"country":      {"us"},
		"limit":        {"1"},
		"types":        {"place,locality"},
	}
	target := c.endpoint + "/" + url.PathEscape(query) + ".json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("build %s geocode request: %w", method, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("%s geocode: %w", method, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("mapbox lookup", "method", method, "status", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("read %s geocode response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &e)
		return domain.GeocodingResult{}, &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode %s geocode response: %w", method, err)
	}
	if len(fc.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}
	return fc.Features[0].result(), nil
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // lon, lat
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
	Context   []area    `json:"context"`
}

// area is one enclosing area of a feature, such as its region or country.
type area struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}

func (f feature) result() domain.GeocodingResult {
	r := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		r.Lon, r.Lat = f.Center[0], f.Center[1]
	}
	for _, a := range f.Context {
		// Regions carry ISO 3166-2 codes like "US-CO".
		if strings.HasPrefix(a.ID, "region.") {
			r.Region = strings.ToUpper(strings.TrimPrefix(a.ShortCode, "US-"))
			break
		}
	}
	return r
}
