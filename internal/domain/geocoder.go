package domain

import "context"

// AddressParts holds the address components returned by a reverse geocoding
// provider. Empty fields mean the provider had no value.
type AddressParts struct {
	Road         string
	HouseNumber  string
	Neighborhood string
	City         string
}

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Address     AddressParts
}

// Geocoder resolves map coordinates to place details.
type Geocoder interface {
	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
