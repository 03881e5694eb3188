// Package geo validates coordinates and measures distances on the WGS84 ellipsoid.
package geo

import (
	"math"

	"github.com/tidwall/geodesic"

	"github.com/aimd54/geoquest/internal/apperrors"
)

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Validate returns an InvalidCoordinate error unless lat is within [-90, 90]
// and lng within [-180, 180].
func Validate(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperrors.InvalidCoordinate("latitude %v is out of range [-90, 90]", lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return apperrors.InvalidCoordinate("longitude %v is out of range [-180, 180]", lng)
	}
	return nil
}

// DistanceMeters returns the geodesic distance between a and b in meters.
func DistanceMeters(a, b Point) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lng, b.Lat, b.Lng, &s12, nil, nil)
	return s12
}

// Within reports whether b lies within radius meters of a, and the measured distance.
func Within(a, b Point, radius float64) (bool, float64) {
	d := DistanceMeters(a, b)
	return d <= radius, d
}
