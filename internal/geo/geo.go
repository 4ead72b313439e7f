// Package geo provides the distance metric shared by the allocation and
// incident-routing engines. All coordinates are (longitude, latitude) pairs
// on a great-circle metric; every call within one solve uses the same metric.
package geo

import "math"

// earthRadiusKm is the mean radius of the Earth.
const earthRadiusKm = 6371.0

// Point is a geographic coordinate.
type Point struct {
	Lon float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the point carries usable coordinates. NaN, Inf and
// out-of-range values all mark a point as invalid; callers exclude such
// entities from matching rather than treating them as zero-distance.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lon) || math.IsNaN(p.Lat) || math.IsInf(p.Lon, 0) || math.IsInf(p.Lat, 0) {
		return false
	}
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// Distance returns the great-circle distance between a and b in kilometres
// using the haversine formula. It is symmetric and zero iff a == b.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLon*sinLon
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
