package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_AxialDipole(t *testing.T) {
	const g10 = -30000.0
	coeffs := []float64{g10, 0, 0}

	for _, theta := range []float64{10, 45, 90, 135, 170} {
		b, err := Synthesize(coeffs, EarthMeanRadiusKm, theta, 25, 1, 1)
		require.NoError(t, err)

		rad := Deg2Rad(theta)
		assert.InDelta(t, 2*g10*math.Cos(rad), b.Radial, 1e-9, "Br at %.0f", theta)
		assert.InDelta(t, g10*math.Sin(rad), b.Theta, 1e-9, "Btheta at %.0f", theta)
		assert.InDelta(t, 0, b.Phi, 1e-9, "Bphi at %.0f", theta)
	}
}

func TestSynthesize_RadialFalloff(t *testing.T) {
	coeffs := []float64{-30000, 0, 0}

	surface, err := Synthesize(coeffs, EarthMeanRadiusKm, 30, 0, 1, 1)
	require.NoError(t, err)
	far, err := Synthesize(coeffs, 2*EarthMeanRadiusKm, 30, 0, 1, 1)
	require.NoError(t, err)

	assert.InDelta(t, surface.Radial/8, far.Radial, 1e-9)
	assert.InDelta(t, surface.Theta/8, far.Theta, 1e-9)
}

func TestSynthesize_EquatorialDipole(t *testing.T) {
	// g11 only, at the equator and 90°E: B_phi = g11.
	b, err := Synthesize([]float64{0, 100, 0}, EarthMeanRadiusKm, 90, 90, 1, 1)
	require.NoError(t, err)

	assert.InDelta(t, 100, b.Phi, 1e-9)
	assert.InDelta(t, 0, b.Radial, 1e-9)
}

func TestSynthesize_Linearity(t *testing.T) {
	a := []float64{-29404.8, -1450.9, 4652.5, -2499.6, 2982.0, -2991.6, 1677.0, -734.6}
	b := []float64{5.7, 7.4, -25.9, -11.0, -7.0, -30.2, -2.1, -22.4}
	sum := make([]float64, len(a))
	for i := range a {
		sum[i] = a[i] + b[i]
	}

	ba, err := Synthesize(a, 6500, 62.5, -47.25, 1, 2)
	require.NoError(t, err)
	bb, err := Synthesize(b, 6500, 62.5, -47.25, 1, 2)
	require.NoError(t, err)
	bs, err := Synthesize(sum, 6500, 62.5, -47.25, 1, 2)
	require.NoError(t, err)

	assert.InDelta(t, ba.Radial+bb.Radial, bs.Radial, 1e-9)
	assert.InDelta(t, ba.Theta+bb.Theta, bs.Theta, 1e-9)
	assert.InDelta(t, ba.Phi+bb.Phi, bs.Phi, 1e-9)
}

func TestSynthesize_DegreeWindow(t *testing.T) {
	coeffs := []float64{-29404.8, -1450.9, 4652.5, -2499.6, 2982.0, -2991.6, 1677.0, -734.6}

	full, err := Synthesize(coeffs, EarthMeanRadiusKm, 40, 10, 1, 2)
	require.NoError(t, err)
	low, err := Synthesize(coeffs, EarthMeanRadiusKm, 40, 10, 1, 1)
	require.NoError(t, err)
	high, err := Synthesize(coeffs, EarthMeanRadiusKm, 40, 10, 2, 2)
	require.NoError(t, err)

	assert.InDelta(t, low.Radial+high.Radial, full.Radial, 1e-9)
	assert.InDelta(t, low.Theta+high.Theta, full.Theta, 1e-9)
	assert.InDelta(t, low.Phi+high.Phi, full.Phi, 1e-9)
}

func TestSynthesize_PoleIsFinite(t *testing.T) {
	coeffs := []float64{-29404.8, -1450.9, 4652.5, -2499.6, 2982.0, -2991.6, 1677.0, -734.6}

	for _, theta := range []float64{0, 180} {
		b, err := Synthesize(coeffs, EarthMeanRadiusKm, theta, 30, 1, 2)
		require.NoError(t, err)
		for _, v := range []float64{b.Radial, b.Theta, b.Phi} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "theta %.0f", theta)
		}
	}
}

func TestSynthesize_DegreeErrors(t *testing.T) {
	coeffs := []float64{-30000, 0, 0}

	_, err := Synthesize(coeffs, EarthMeanRadiusKm, 45, 0, 1, 2)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = Synthesize(coeffs, EarthMeanRadiusKm, 45, 0, 0, 1)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = Synthesize([]float64{1, 2}, EarthMeanRadiusKm, 45, 0, 1, 1)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = Synthesize(coeffs, EarthMeanRadiusKm, 190, 0, 1, 1)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestSynthesizeMany_Broadcast(t *testing.T) {
	coeffs := []float64{-30000, 0, 0}

	out, err := SynthesizeMany(coeffs, []float64{EarthMeanRadiusKm}, []float64{30, 60, 90}, []float64{0}, 1, 1)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, theta := range []float64{30, 60, 90} {
		single, err := Synthesize(coeffs, EarthMeanRadiusKm, theta, 0, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, single, out[i])
	}

	_, err = SynthesizeMany(coeffs, []float64{6371.2, 6400}, []float64{30, 60, 90}, []float64{0}, 1, 1)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = SynthesizeMany(coeffs, nil, []float64{30}, []float64{0}, 1, 1)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestFieldComponents_Vector(t *testing.T) {
	v := FieldComponents{Radial: 1, Theta: 2, Phi: 3}.Vector()
	assert.Equal(t, FieldVector{X: -2, Y: 3, Z: -1}, v)
}
