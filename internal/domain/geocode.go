package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

// Form keys read and written by location enrichment. Both the US Accidents
// names (Start_Lat/Start_Lng) and the older form names (Latitude/Longitude)
// are recognized.
const (
	FieldStartLat  = "Start_Lat"
	FieldStartLng  = "Start_Lng"
	FieldLatitude  = "Latitude"
	FieldLongitude = "Longitude"
	FieldCity      = "City"
	FieldState     = "State"
)

// EnrichFormLocation fills missing location fields of a form before it is
// submitted. A form with coordinates but no city is reverse-geocoded, which
// also fills a missing state. A form with city and state but no coordinates
// is forward-geocoded. If geocoder is nil or the lookup fails, the form is
// returned unchanged. The input form is never mutated.
func EnrichFormLocation(ctx context.Context, form FormPayload, geocoder Geocoder, logger *slog.Logger) FormPayload {
	if geocoder == nil {
		return form
	}

	latKey, lngKey := coordinateKeys(form)
	lat, hasLat := numberField(form, latKey)
	lon, hasLon := numberField(form, lngKey)
	hasCoords := hasLat && hasLon && (lat != 0 || lon != 0)
	city := stringField(form, FieldCity)
	state := stringField(form, FieldState)

	// Forward geocode: city/state → coordinates (when coords are missing).
	if !hasCoords && city != "" && state != "" {
		result, err := geocoder.ForwardGeocode(ctx, city, state)
		if err != nil {
			logger.Warn("forward geocoding failed", "city", city, "state", state, "error", err)
			return form
		}
		if result.Lat == 0 && result.Lon == 0 {
			return form
		}
		out := form.Clone()
		out[latKey] = result.Lat
		out[lngKey] = result.Lon
		return out
	}

	// Reverse geocode: coordinates → city (when the city is missing).
	if hasCoords && city == "" {
		result, err := geocoder.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
			return form
		}
		if result.PlaceName == "" {
			return form
		}
		out := form.Clone()
		out[FieldCity] = result.PlaceName
		if state == "" && result.Region != "" {
			out[FieldState] = result.Region
		}
		return out
	}

	return form
}

// coordinateKeys picks the key pair the form already uses, preferring the
// Start_Lat/Start_Lng names.
func coordinateKeys(form FormPayload) (string, string) {
	if _, ok := form[FieldLatitude]; ok {
		if _, ok := form[FieldStartLat]; !ok {
			return FieldLatitude, FieldLongitude
		}
	}
	return FieldStartLat, FieldStartLng
}

// numberField reads a numeric form value that may have been decoded from
// JSON, YAML or typed in as text.
func numberField(form FormPayload, key string) (float64, bool) {
	switch v := form[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringField(form FormPayload, key string) string {
	s, _ := form[key].(string)
	return strings.TrimSpace(s)
}
