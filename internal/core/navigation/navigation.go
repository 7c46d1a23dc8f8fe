// Package navigation builds Google Maps turn-by-turn URLs for dispatchers
// and field technicians. These are pure string builders, never network calls.
package navigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakline/fieldops-backend/internal/core/domain"
)

// ErrNoWaypoints is returned when a multi-stop route has no waypoints.
var ErrNoWaypoints = errors.New("at least one waypoint is required")

// URL returns a navigation URL to a single destination. On mobile this
// opens the native Google Maps app when installed.
func URL(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%v,%v", lat, lon)
}

// RouteURL returns a driving route URL from an origin to a destination.
func RouteURL(originLat, originLon, destLat, destLon float64) string {
	return fmt.Sprintf(
		"https://www.google.com/maps/dir/?api=1&origin=%v,%v&destination=%v,%v&travelmode=driving",
		originLat, originLon, destLat, destLon,
	)
}

// MultiStopURL returns a route URL through every waypoint in order, for
// technicians with several jobs on one run. A single waypoint degrades to
// a plain destination URL.
func MultiStopURL(waypoints []domain.Coordinates) (string, error) {
	switch len(waypoints) {
	case 0:
		return "", ErrNoWaypoints
	case 1:
		return URL(waypoints[0].Latitude, waypoints[0].Longitude), nil
	}

	parts := make([]string, len(waypoints))
	for i, w := range waypoints {
		parts[i] = fmt.Sprintf("%v,%v", w.Latitude, w.Longitude)
	}
	return "https://www.google.com/maps/dir/" + strings.Join(parts, "/"), nil
}
