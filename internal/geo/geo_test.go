package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	a := Point{Lon: -61.0, Lat: 13.0}
	b := Point{Lon: -60.5, Lat: 13.5}

	assert.Equal(t, 0.0, Distance(a, a), "distance to self is zero")
	assert.Equal(t, Distance(a, b), Distance(b, a), "distance is symmetric")
	assert.Greater(t, Distance(a, b), 0.0)

	// One degree of latitude is roughly 111 km.
	d := Distance(Point{Lon: 0, Lat: 0}, Point{Lon: 0, Lat: 1})
	assert.InDelta(t, 111.2, d, 1.0)
}

func TestDistanceMonotonic(t *testing.T) {
	origin := Point{Lon: 0, Lat: 0}
	near := Point{Lon: 0.1, Lat: 0.1}
	far := Point{Lon: 5, Lat: 5}
	assert.Less(t, Distance(origin, near), Distance(origin, far))
}

func TestPointValid(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		valid bool
	}{
		{"origin", Point{0, 0}, true},
		{"caribbean", Point{-60.98, 14.01}, true},
		{"lon out of range", Point{181, 0}, false},
		{"lat out of range", Point{0, -91}, false},
		{"nan lon", Point{math.NaN(), 10}, false},
		{"inf lat", Point{10, math.Inf(1)}, false},
		{"boundary", Point{-180, 90}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.point.Valid())
		})
	}
}
