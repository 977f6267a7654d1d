package domain

import (
	"fmt"
	"math"
)

// FieldComponents are the spherical field components at a geocentric position, in the
// units of the coefficients (nT for main field, nT/yr for secular variation).
type FieldComponents struct {
	Radial float64 // B_r, positive outward.
	Theta  float64 // B_θ, positive southward.
	Phi    float64 // B_φ, positive eastward.
}

// Vector returns the local north/east/down components in the geocentric frame.
func (b FieldComponents) Vector() FieldVector {
	return FieldVector{X: -b.Theta, Y: b.Phi, Z: -b.Radial}
}

// RowDegree returns the maximum degree a degree-1-based coefficient row supports.
func RowDegree(coeffs []float64) (int, error) {
	n := int(math.Sqrt(float64(len(coeffs)+1))) - 1
	if n < 1 || CoeffCount(n) != len(coeffs) {
		return 0, fmt.Errorf("%w: coefficient row of length %d is not a complete degree set", ErrDomain, len(coeffs))
	}
	return n, nil
}

// Synthesize evaluates the internal potential field of a coefficient row at one point.
// radiusKm is geocentric, theta is geocentric colatitude and phi longitude, both in
// degrees. Only degrees nmin..nmax contribute.
func Synthesize(coeffs []float64, radiusKm, theta, phi float64, nmin, nmax int) (FieldComponents, error) {
	if err := checkDegreeRange(coeffs, nmin, nmax); err != nil {
		return FieldComponents{}, err
	}
	pnm, err := Legendre(nmax, theta)
	if err != nil {
		return FieldComponents{}, err
	}
	return synthesize(coeffs, pnm, radiusKm, phi, nmin, nmax), nil
}

// SynthesizeMany broadcasts Synthesize over positions. Each slice has either the common
// length or length 1.
func SynthesizeMany(coeffs []float64, radiiKm, thetas, phis []float64, nmin, nmax int) ([]FieldComponents, error) {
	if err := checkDegreeRange(coeffs, nmin, nmax); err != nil {
		return nil, err
	}

	size := 1
	for _, s := range [][]float64{radiiKm, thetas, phis} {
		switch {
		case len(s) == 0:
			return nil, fmt.Errorf("%w: empty coordinate input", ErrDomain)
		case len(s) == 1 || len(s) == size:
		case size == 1:
			size = len(s)
		default:
			return nil, fmt.Errorf("%w: cannot broadcast inputs of length %d and %d", ErrDomain, size, len(s))
		}
	}
	at := func(s []float64, i int) float64 {
		if len(s) == 1 {
			return s[0]
		}
		return s[i]
	}

	out := make([]FieldComponents, size)
	var pnm *LegendreTable
	for i := range out {
		theta := at(thetas, i)
		if pnm == nil || pnm.Theta != theta {
			var err error
			pnm, err = Legendre(nmax, theta)
			if err != nil {
				return nil, err
			}
		}
		out[i] = synthesize(coeffs, pnm, at(radiiKm, i), at(phis, i), nmin, nmax)
	}
	return out, nil
}

func checkDegreeRange(coeffs []float64, nmin, nmax int) error {
	rowMax, err := RowDegree(coeffs)
	if err != nil {
		return err
	}
	if nmin < 1 {
		return fmt.Errorf("%w: nmin %d must be at least 1", ErrDomain, nmin)
	}
	if nmax < nmin {
		return fmt.Errorf("%w: nmax %d is smaller than nmin %d", ErrDomain, nmax, nmin)
	}
	if nmax > rowMax {
		return fmt.Errorf("%w: nmax %d exceeds coefficient degree %d", ErrDomain, nmax, rowMax)
	}
	return nil
}

func synthesize(coeffs []float64, pnm *LegendreTable, radiusKm, phi float64, nmin, nmax int) FieldComponents {
	radius := radiusKm / EarthMeanRadiusKm
	rn := math.Pow(radius, -float64(nmin+2))

	phiRad := Deg2Rad(phi)
	cmp := make([]float64, nmax+1)
	smp := make([]float64, nmax+1)
	for m := range cmp {
		cmp[m] = math.Cos(float64(m) * phiRad)
		smp[m] = math.Sin(float64(m) * phiRad)
	}

	p := pnm.P
	sinth := pnm.SinTheta()

	var b FieldComponents
	num := nmin*nmin - 1
	for n := nmin; n <= nmax; n++ {
		fn1 := float64(n + 1)
		b.Radial += fn1 * p[n][0] * rn * coeffs[num]
		b.Theta += -p[0][n+1] * rn * coeffs[num]
		num++

		for m := 1; m <= n; m++ {
			g, h := coeffs[num], coeffs[num+1]
			gc := g*cmp[m] + h*smp[m]
			b.Radial += fn1 * p[n][m] * rn * gc
			b.Theta += -p[m][n+1] * rn * gc

			// L'Hôpital at the poles, where P(n,m)/sinθ is 0/0.
			var divP float64
			switch pnm.Theta {
			case 0:
				divP = p[m][n+1]
			case 180:
				divP = -p[m][n+1]
			default:
				divP = p[n][m] / sinth
			}
			b.Phi += float64(m) * divP * rn * (g*smp[m] - h*cmp[m])
			num += 2
		}
		rn /= radius
	}
	return b
}
