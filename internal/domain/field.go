package domain

import (
	"fmt"
	"math"
)

// FieldModel evaluates the main field, its secular variation and the derived elements
// from a coefficient set. It holds no mutable state and may be shared across goroutines.
type FieldModel struct {
	coeffs *CoefficientSet
}

// FieldResult is the full evaluation of the model at one position and date, in the
// geodetic frame.
type FieldResult struct {
	Year       float64
	EpochStart float64
	Main       FieldVector // Main field at Year.
	SV         FieldVector // Secular variation per year within the enclosing epoch.
	EpochField FieldVector // Main field at EpochStart.
	Elements   Elements
	Rates      ElementRates
}

// NewFieldModel wraps a loaded coefficient set.
func NewFieldModel(coeffs *CoefficientSet) *FieldModel {
	return &FieldModel{coeffs: coeffs}
}

// Coefficients returns the underlying coefficient set.
func (m *FieldModel) Coefficients() *CoefficientSet {
	return m.coeffs
}

// Evaluate computes the field at a geodetic latitude/longitude (degrees), altitude above
// the ellipsoid (km) and decimal year.
func (m *FieldModel) Evaluate(lat, lon, altKm, year float64) (FieldResult, error) {
	if !isFinite(lat) || !isFinite(lon) || !isFinite(altKm) || !isFinite(year) {
		return FieldResult{}, fmt.Errorf("%w: non-finite input (lat %v, lon %v, alt %v km, year %v)",
			ErrDomain, lat, lon, altKm, year)
	}
	if lat < -90 || lat > 90 {
		return FieldResult{}, fmt.Errorf("%w: latitude %.6f outside [-90, 90]", ErrDomain, lat)
	}
	pos := GeodeticToGeocentric(altKm, 90-lat)
	return m.EvaluateAt(pos, lon, year)
}

// EvaluateAt computes the field at an already converted geocentric position. The three
// syntheses are: main field at year, the coefficient difference across the first year of
// the enclosing 5-year epoch, and the field at the epoch start.
func (m *FieldModel) EvaluateAt(pos GeocentricPosition, lon, year float64) (FieldResult, error) {
	nmax := m.coeffs.Params.NMax
	nmin := 1
	epoch := EpochStart(year)

	rows := [][]float64{
		m.coeffs.At(year),
		m.coeffs.Diff(epoch+1, epoch),
		m.coeffs.At(epoch),
	}
	var vectors [3]FieldVector
	for i, row := range rows {
		b, err := Synthesize(row, pos.RadiusKm, pos.Colat, lon, nmin, nmax)
		if err != nil {
			return FieldResult{}, fmt.Errorf("synthesizing field for %.4f: %w", year, err)
		}
		vectors[i] = RotateToGeodetic(b.Vector(), pos.Rotation)
	}

	main, sv, epochField := vectors[0], vectors[1], vectors[2]
	return FieldResult{
		Year:       year,
		EpochStart: epoch,
		Main:       main,
		SV:         sv,
		EpochField: epochField,
		Elements:   XYZToDHIF(main),
		Rates:      XYZToDHIFRate(epochField, sv),
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
