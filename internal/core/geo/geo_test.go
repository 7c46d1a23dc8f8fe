package geo_test

import (
	"testing"

	"github.com/oakline/fieldops-backend/internal/core/geo"
	"github.com/stretchr/testify/assert"
)

func TestDistance_Zero(t *testing.T) {
	assert.Zero(t, geo.Distance(39.77, -86.16, 39.77, -86.16))
	assert.Zero(t, geo.Distance(0, 0, 0, 0))
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{39.77, -86.16, 39.78, -86.15},
		{0, 0, 45, 90},
		{-33.86, 151.21, 51.51, -0.13},
		{89.9, 0, -89.9, 180},
	}

	for _, p := range pairs {
		ab := geo.Distance(p[0], p[1], p[2], p[3])
		ba := geo.Distance(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of latitude along a meridian is ~111.2 km on a
	// 6,371 km sphere.
	d := geo.Distance(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 50)

	// Indianapolis downtown block-scale check used by the dispatch tests.
	d = geo.Distance(39.77, -86.16, 39.78, -86.15)
	assert.Greater(t, d, 1000.0)
	assert.Less(t, d, 2000.0)
}
