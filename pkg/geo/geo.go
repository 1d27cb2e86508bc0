package geo

import "math"

const earthRadiusKm = 6371

// SentinelDistance ranks entries with no known location after everything
// else when sorting by proximity.
const SentinelDistance = 999999

// DistanceKm calculates the great circle distance in km between two points
// using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLon1 := lon1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	rLon2 := lon2 * math.Pi / 180

	dLat := rLat2 - rLat1
	dLon := rLon2 - rLon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return c * earthRadiusKm
}
