// Package geo holds the great-circle math used to rank stations by proximity.
package geo

import (
	"fmt"
	"math"
	"strconv"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

const directionsBaseURL = "https://www.google.com/maps/dir/?api=1&destination="

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceTo returns the haversine distance in kilometers from p to o.
func (p Point) DistanceTo(o Point) float64 {
	return Distance(p.Lat, p.Lng, o.Lat, o.Lng)
}

// Valid reports whether p is a finite coordinate within WGS84 ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("%s,%s", formatCoord(p.Lat), formatCoord(p.Lng))
}

// Distance returns the haversine great-circle distance in kilometers.
// Inputs are not validated.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DirectionsURL builds a Google Maps directions deep link to p.
func DirectionsURL(p Point) string {
	return directionsBaseURL + p.String()
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
