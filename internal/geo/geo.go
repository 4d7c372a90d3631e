// Package geo provides coordinate validation and great-circle distance
// computation. All distances use the Haversine formula on a spherical
// Earth model.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of Earth in kilometers.
const EarthRadiusKm = 6371.0

// Coordinate is a validated (latitude, longitude) pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// NewCoordinate validates the ranges and returns a Coordinate.
// Latitude must be in [-90, 90] and longitude in [-180, 180];
// out-of-range values are a caller error, never clamped.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinate{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// DistanceKm returns the great-circle distance between a and b in
// kilometers. Symmetric, and zero for identical points. Inputs are not
// range-checked here; validation belongs at the API boundary.
func DistanceKm(a, b Coordinate) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func degToRad(d float64) float64 {
	return d * (math.Pi / 180)
}
