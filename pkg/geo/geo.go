// Package geo provides great-circle distance math for nearby searches.
package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance in kilometers between two
// latitude/longitude pairs given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// BoundingBox returns a latitude/longitude window that contains every point
// within radiusKm of the center. Used to prefilter rows in SQL before the
// exact distance check.
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusKm / 111.0
	lonDelta := latDelta
	if cos := math.Cos(lat * math.Pi / 180.0); cos > 0.01 {
		lonDelta = latDelta / cos
	}
	return lat - latDelta, lat + latDelta, lon - lonDelta, lon + lonDelta
}
