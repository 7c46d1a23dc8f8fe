package navigation_test

import (
	"testing"

	"github.com/oakline/fieldops-backend/internal/core/domain"
	"github.com/oakline/fieldops-backend/internal/core/navigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	url := navigation.URL(39.77, -86.16)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=39.77,-86.16", url)
}

func TestRouteURL(t *testing.T) {
	url := navigation.RouteURL(39.78, -86.15, 39.77, -86.16)
	assert.Equal(t,
		"https://www.google.com/maps/dir/?api=1&origin=39.78,-86.15&destination=39.77,-86.16&travelmode=driving",
		url,
	)
}

func TestMultiStopURL(t *testing.T) {
	t.Run("no waypoints", func(t *testing.T) {
		_, err := navigation.MultiStopURL(nil)
		assert.ErrorIs(t, err, navigation.ErrNoWaypoints)
	})

	t.Run("single waypoint degrades to destination url", func(t *testing.T) {
		url, err := navigation.MultiStopURL([]domain.Coordinates{
			{Latitude: 39.77, Longitude: -86.16},
		})
		require.NoError(t, err)
		assert.Equal(t, navigation.URL(39.77, -86.16), url)
	})

	t.Run("multiple waypoints joined in order", func(t *testing.T) {
		url, err := navigation.MultiStopURL([]domain.Coordinates{
			{Latitude: 39.77, Longitude: -86.16},
			{Latitude: 39.78, Longitude: -86.15},
			{Latitude: 39.9, Longitude: -86},
		})
		require.NoError(t, err)
		assert.Equal(t,
			"https://www.google.com/maps/dir/39.77,-86.16/39.78,-86.15/39.9,-86",
			url,
		)
	})
}
