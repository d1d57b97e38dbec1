package geo

import (
	"math"

	"github.com/marinerstack/mariner-guard/internal/models"
)

const (
	// EarthRadiusNM is the spherical-earth radius in nautical miles.
	EarthRadiusNM = 3440.065
	// EarthRadiusMeters is the spherical-earth radius in metres.
	EarthRadiusMeters = 6371000.0
	// NMPerLatitude is nautical miles per degree of latitude.
	NMPerLatitude = 60.0
)

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// haversine returns the central angle between two positions in radians.
// https://www.movable-type.co.uk/scripts/latlong.html
func haversine(a, b models.Position) float64 {
	lat1, lon1 := radians(a.Latitude), radians(a.Longitude)
	lat2, lon2 := radians(b.Latitude), radians(b.Longitude)
	dlat, dlon := lat2-lat1, lon2-lon1

	x := sqr(math.Sin(dlat/2)) + math.Cos(lat1)*math.Cos(lat2)*sqr(math.Sin(dlon/2))
	return 2 * math.Atan2(math.Sqrt(x), math.Sqrt(1-x))
}

func sqr(v float64) float64 { return v * v }

// DistanceNM returns the great-circle distance between two positions in
// nautical miles.
func DistanceNM(a, b models.Position) float64 {
	return EarthRadiusNM * haversine(a, b)
}

// DistanceMeters returns the great-circle distance between two positions in
// metres.
func DistanceMeters(a, b models.Position) float64 {
	return EarthRadiusMeters * haversine(a, b)
}

// Bearing returns the initial great-circle bearing (forward azimuth) from one
// position to another, in degrees [0, 360).
func Bearing(from, to models.Position) float64 {
	lat1, lon1 := radians(from.Latitude), radians(from.Longitude)
	lat2, lon2 := radians(to.Latitude), radians(to.Longitude)
	dlon := lon2 - lon1

	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)
	return NormalizeBearing(degrees(math.Atan2(y, x)))
}

// NormalizeBearing reduces a bearing to [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// RelativeBearing returns the bearing relative to the given course, normalized
// to (-180, 180]. Positive values are to starboard.
func RelativeBearing(bearing, course float64) float64 {
	rel := math.Mod(bearing-course, 360)
	if rel > 180 {
		rel -= 360
	}
	if rel <= -180 {
		rel += 360
	}
	return rel
}

// Offset returns the destination point reached by travelling the given
// distance in metres along the given bearing from a starting position.
func Offset(from models.Position, bearingDeg, distMeters float64) models.Position {
	lat1, lon1 := radians(from.Latitude), radians(from.Longitude)
	brg := radians(bearingDeg)
	d := distMeters / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return models.Position{Latitude: degrees(lat2), Longitude: degrees(lon2)}
}
