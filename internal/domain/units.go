package domain

import "math"

// Reference radii in kilometres.
const (
	// EarthMeanRadiusKm is the IGRF reference radius a.
	EarthMeanRadiusKm = 6371.2
	// WGS84EquatorialRadiusKm is the WGS-84 semi-major axis.
	WGS84EquatorialRadiusKm = 6378.137
	// WGS84Flattening is the WGS-84 ellipsoid flattening.
	WGS84Flattening = 1 / 298.257223563
)

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
