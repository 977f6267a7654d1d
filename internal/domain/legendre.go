package domain

import (
	"fmt"
	"math"
)

// LegendreTable holds Schmidt quasi-normalized associated Legendre functions and their
// colatitude derivatives for one colatitude.
//
// The table is dense, (nmax+1) x (nmax+2): P(n,m) lives at [n][m] and dP(n,m)/dθ at [m][n+1].
type LegendreTable struct {
	NMax  int
	Theta float64 // Colatitude in degrees.
	P     [][]float64
}

// Value returns P(n,m).
func (t *LegendreTable) Value(n, m int) float64 {
	t.mustIndex(n, m)
	return t.P[n][m]
}

// Derivative returns dP(n,m)/dθ.
func (t *LegendreTable) Derivative(n, m int) float64 {
	t.mustIndex(n, m)
	return t.P[m][n+1]
}

// SinTheta returns sin(θ) as stored in P(1,1).
func (t *LegendreTable) SinTheta() float64 {
	return t.P[1][1]
}

func (t *LegendreTable) mustIndex(n, m int) {
	if n < 0 || n > t.NMax || m < 0 || m > n {
		panic(fmt.Sprintf("legendre index (%d, %d) outside triangle of degree %d", n, m, t.NMax))
	}
}

// CheckColatitude validates a colatitude in degrees. Exactly 0 or 180 is accepted and
// reported through pole; anything outside [0, 180] fails with ErrDomain.
func CheckColatitude(theta float64) (pole bool, err error) {
	if math.IsNaN(theta) || theta < 0 || theta > 180 {
		return false, fmt.Errorf("%w: colatitude %.6f outside [0, 180]", ErrDomain, theta)
	}
	return theta == 0 || theta == 180, nil
}

// AtPole reports whether theta sits exactly on a geographic pole.
func AtPole(theta float64) bool {
	return theta == 0 || theta == 180
}

// Legendre computes P(n,m) and dP(n,m)/dθ up to degree nmax at colatitude theta (degrees),
// following the recursion of Langel, "The Main Field" (1987), eq. 27 and Table 2.
func Legendre(nmax int, theta float64) (*LegendreTable, error) {
	if nmax < 1 {
		return nil, fmt.Errorf("%w: legendre degree %d must be at least 1", ErrDomain, nmax)
	}
	if _, err := CheckColatitude(theta); err != nil {
		return nil, err
	}

	costh := math.Cos(Deg2Rad(theta))
	sinth := math.Sqrt(1 - costh*costh)

	p := make([][]float64, nmax+1)
	for n := range p {
		p[n] = make([]float64, nmax+2)
	}
	p[0][0] = 1
	p[1][1] = sinth

	rootn := make([]float64, 2*nmax*nmax+1)
	for k := range rootn {
		rootn[k] = math.Sqrt(float64(k))
	}

	for m := 0; m < nmax; m++ {
		pTmp := rootn[m+m+1] * p[m][m]
		p[m+1][m] = costh * pTmp
		if m > 0 {
			p[m+1][m+1] = sinth * pTmp / rootn[m+m+2]
		}
		for n := m + 2; n <= nmax; n++ {
			d := n*n - m*m
			e := n + n - 1
			p[n][m] = (float64(e)*costh*p[n-1][m] - rootn[d-e]*p[n-2][m]) / rootn[d]
		}
	}

	// Derivatives: dP(n,m) is stored at [m][n+1].
	p[0][2] = -p[1][1]
	p[1][2] = p[1][0]
	for n := 2; n <= nmax; n++ {
		fn := float64(n)
		p[0][n+1] = -math.Sqrt((fn*fn+fn)/2) * p[n][1]
		p[1][n+1] = (math.Sqrt(2*(fn*fn+fn))*p[n][0] - math.Sqrt(fn*fn+fn-2)*p[n][2]) / 2
		for m := 2; m < n; m++ {
			fm := float64(m)
			p[m][n+1] = 0.5 * (math.Sqrt((fn+fm)*(fn-fm+1))*p[n][m-1] -
				math.Sqrt((fn+fm+1)*(fn-fm))*p[n][m+1])
		}
		p[n][n+1] = math.Sqrt(2*fn) * p[n][n-1] / 2
	}

	return &LegendreTable{NMax: nmax, Theta: theta, P: p}, nil
}
