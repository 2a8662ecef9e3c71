package geo

import (
	"math"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b.
// ok is false when either point is missing lat or lng; callers must not read that as zero.
func DistanceKm(a, b models.Coordinates) (km float64, ok bool) {
	if !a.Known() || !b.Known() {
		return 0, false
	}
	return haversine(*a.Lat, *a.Lng, *b.Lat, *b.Lng), true
}

func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
