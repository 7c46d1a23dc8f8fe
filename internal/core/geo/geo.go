// Package geo provides great-circle math on a spherical-earth model.
// Distances are meters; unit conversions belong to callers so the core
// stays unit-agnostic.
package geo

import "math"

// earthRadiusMeters is the mean earth radius. Fixed for reproducibility.
const earthRadiusMeters = 6371000.0

// Distance returns the haversine great-circle distance in meters between
// two latitude/longitude points. Symmetric in its arguments, and zero iff
// the coordinates are identical.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
