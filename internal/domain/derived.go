package domain

import "math"

// FieldVector holds north (X), east (Y) and down (Z) field components.
type FieldVector struct {
	X float64
	Y float64
	Z float64
}

// Elements are the derived descriptors of a field vector.
type Elements struct {
	D float64 // Declination, degrees east of north.
	H float64 // Horizontal intensity.
	I float64 // Inclination, degrees below horizontal.
	F float64 // Total intensity.
}

// ElementRates are the secular-variation rates of the derived descriptors.
// Angles are in minutes of arc per year, intensities in field units per year.
type ElementRates struct {
	Ddot float64
	Hdot float64
	Idot float64
	Fdot float64
}

// XYZToDHIF converts Cartesian components to declination, horizontal intensity,
// inclination and total intensity.
func XYZToDHIF(v FieldVector) Elements {
	hsq := v.X*v.X + v.Y*v.Y
	h := math.Sqrt(hsq)
	return Elements{
		D: Rad2Deg(math.Atan2(v.Y, v.X)),
		H: h,
		I: Rad2Deg(math.Atan2(v.Z, h)),
		F: math.Sqrt(hsq + v.Z*v.Z),
	}
}

// XYZToDHIFRate converts component rates into rates of D, H, I and F, relative to the
// field v. At H = 0 the declination rate is not finite; that is a valid result.
func XYZToDHIFRate(v, dv FieldVector) ElementRates {
	h2 := v.X*v.X + v.Y*v.Y
	h := math.Sqrt(h2)
	f2 := h2 + v.Z*v.Z

	hdot := (v.X*dv.X + v.Y*dv.Y) / h
	return ElementRates{
		Ddot: 60 * Rad2Deg((dv.X*v.Y-dv.Y*v.X)/h2),
		Hdot: hdot,
		Idot: 60 * Rad2Deg((hdot*v.Z-h*dv.Z)/f2),
		Fdot: (v.X*dv.X + v.Y*dv.Y + v.Z*dv.Z) / math.Sqrt(f2),
	}
}
