package domain

import "context"

// GeocodingResult is the best place match for a location lookup.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	// Region is the two-letter state code, when the provider reports one.
	Region     string
	Confidence float64
}

// Geocoder resolves the location fields of a prediction form.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, city, state string) (GeocodingResult, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
