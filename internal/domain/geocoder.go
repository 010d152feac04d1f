package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves a station name to coordinates. Station exports carry
// coordinates only as free text in the preamble, so summaries look them up.
type Geocoder interface {
	// ForwardGeocode converts a place name, optionally qualified by a region
	// such as a country, to coordinates.
	ForwardGeocode(ctx context.Context, name, region string) (GeocodingResult, error)
}
