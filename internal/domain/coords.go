package domain

import "math"

// Rotation holds the sine and cosine of the angle between the geocentric and geodetic
// vertical at a point.
type Rotation struct {
	Sin float64
	Cos float64
}

// GeocentricPosition is a point in spherical geocentric coordinates.
type GeocentricPosition struct {
	RadiusKm float64
	Colat    float64 // Degrees.
	Rotation Rotation
}

// GeodeticToGeocentric converts altitude above the WGS-84 ellipsoid (km) and geodetic
// colatitude (degrees) to geocentric radius and colatitude, returning the frame rotation
// used by RotateToGeodetic.
func GeodeticToGeocentric(altKm, gdColat float64) GeocentricPosition {
	const (
		eqrad = WGS84EquatorialRadiusKm
		plrad = eqrad * (1 - WGS84Flattening)
	)

	ctgd := math.Cos(Deg2Rad(gdColat))
	stgd := math.Sin(Deg2Rad(gdColat))
	a2 := eqrad * eqrad
	a4 := a2 * a2
	b2 := plrad * plrad
	b4 := b2 * b2
	c2 := ctgd * ctgd
	s2 := 1 - c2

	rho := math.Sqrt(a2*s2 + b2*c2)
	rad := math.Sqrt(altKm*(altKm+2*rho) + (a4*s2+b4*c2)/(rho*rho))
	cd := (altKm + rho) / rad
	sd := (a2 - b2) * ctgd * stgd / (rho * rad)

	cthc := ctgd*cd - stgd*sd
	// Guard acos against rounding just past ±1.
	cthc = math.Max(-1, math.Min(1, cthc))

	return GeocentricPosition{
		RadiusKm: rad,
		Colat:    Rad2Deg(math.Acos(cthc)),
		Rotation: Rotation{Sin: sd, Cos: cd},
	}
}

// GeocentricToGeodetic converts geocentric radius (km) and colatitude (degrees) to altitude
// above the WGS-84 ellipsoid and geodetic colatitude using Heikkinen's closed form.
func GeocentricToGeodetic(radiusKm, gcColat float64) (altKm, gdColat float64) {
	const (
		a = WGS84EquatorialRadiusKm
		b = a * (1 - WGS84Flattening)
	)
	e2 := (a*a - b*b) / (a * a)
	e4 := e2 * e2
	ep2 := (a*a - b*b) / (b * b)

	r := radiusKm * math.Sin(Deg2Rad(gcColat))
	z := radiusKm * math.Cos(Deg2Rad(gcColat))
	r2 := r * r
	z2 := z * z

	f := 54 * b * b * z2
	g := r2 + (1-e2)*z2 - e2*(a*a-b*b)
	c := e4 * f * r2 / (g * g * g)
	s := math.Cbrt(1 + c + math.Sqrt(c*c+2*c))
	p := f / (3 * (s + 1/s + 1) * (s + 1/s + 1) * g * g)
	q := math.Sqrt(1 + 2*e4*p)
	r0 := -p*e2*r/(1+q) + math.Sqrt(0.5*a*a*(1+1/q)-p*(1-e2)*z2/(q*(1+q))-0.5*p*r2)
	u := math.Sqrt((r-e2*r0)*(r-e2*r0) + z2)
	v := math.Sqrt((r-e2*r0)*(r-e2*r0) + (1-e2)*z2)
	z0 := b * b * z / (a * v)

	altKm = u * (1 - b*b/(a*v))
	gdColat = 90 - Rad2Deg(math.Atan2(z+ep2*z0, r))
	return altKm, gdColat
}

// RotateToGeodetic rotates a north/east/down vector from the geocentric to the geodetic
// frame. Y is unchanged.
func RotateToGeodetic(v FieldVector, rot Rotation) FieldVector {
	return FieldVector{
		X: v.X*rot.Cos + v.Z*rot.Sin,
		Y: v.Y,
		Z: v.Z*rot.Cos - v.X*rot.Sin,
	}
}
