package algo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// latitude/longitude points on a spherical Earth. The result is symmetric in
// its arguments, zero for coincident points, and never negative.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c
}
