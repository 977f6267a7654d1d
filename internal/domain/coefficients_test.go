package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dipoleSHC builds a degree-1 coefficient file with two knots and only g10 varying.
func dipoleSHC(t0, t1, g0, g1 float64) string {
	var b strings.Builder
	b.WriteString("# synthetic axial dipole\n")
	fmt.Fprintf(&b, "1 1 2 2 %d %.1f %.1f\n", int(t1-t0), t0, t1)
	fmt.Fprintf(&b, "%.1f %.1f\n", t0, t1)
	fmt.Fprintf(&b, "1 0 %.1f %.1f\n", g0, g1)
	b.WriteString("1 1 0.0 0.0\n")
	b.WriteString("1 -1 0.0 0.0\n")
	return b.String()
}

func mustParse(t *testing.T, text string) *CoefficientSet {
	t.Helper()
	set, err := ParseCoefficients(strings.NewReader(text), "fixture.shc")
	require.NoError(t, err)
	return set
}

func TestParseCoefficients_Header(t *testing.T) {
	set := mustParse(t, dipoleSHC(2000, 2020, -30000, -29000))

	assert.Equal(t, ModelParams{NMin: 1, NMax: 1, N: 2, Order: 2, Step: 20, StartYear: 2000, EndYear: 2020}, set.Params)
	assert.Equal(t, []float64{2000, 2020}, set.Times)
	require.Len(t, set.Coeffs, 2)
	assert.Equal(t, []float64{-30000, 0, 0}, set.Coeffs[0])
	assert.Equal(t, []float64{-29000, 0, 0}, set.Coeffs[1])
}

func TestParseCoefficients_PadsLowDegrees(t *testing.T) {
	text := `# nmin = 2
2 2 1 1 0 2000.0 2000.0
2000.0
2 0 1.0
2 1 2.0
2 -1 3.0
2 2 4.0
2 -2 5.0
`
	set := mustParse(t, text)

	require.Len(t, set.Coeffs, 1)
	assert.Len(t, set.Coeffs[0], CoeffCount(2))
	assert.Equal(t, []float64{0, 0, 0, 1, 2, 3, 4, 5}, set.Coeffs[0])
}

func TestParseCoefficients_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "missing header",
			text: "# only comments\n",
		},
		{
			name: "non numeric token",
			text: "1 1 1 1 0 2000 2000\n2000\n1 0 abc\n1 1 0\n1 -1 0\n",
		},
		{
			name: "reshape mismatch",
			text: "1 1 1 1 0 2000 2000\n2000\n1 0 -30000\n1 1 0\n",
		},
		{
			name: "descending knots",
			text: "1 1 2 2 5 2000 2005\n2005 2000\n1 0 1 2\n1 1 0 0\n1 -1 0 0\n",
		},
		{
			name: "invalid degree range",
			text: "2 1 1 1 0 2000 2000\n2000\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCoefficients(strings.NewReader(tt.text), "bad.shc")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestCoefficientSet_At(t *testing.T) {
	set := mustParse(t, dipoleSHC(2000, 2020, -30000, -29000))

	tests := []struct {
		year float64
		want float64
	}{
		{2000, -30000},
		{2020, -29000},
		{2010, -29500},
		{2005, -29750},
		{2025, -28750}, // extrapolated from the last segment
		{1990, -30500}, // extrapolated from the first segment
	}
	for _, tt := range tests {
		got := set.At(tt.year)
		assert.InDelta(t, tt.want, got[0], 1e-9, "g10 at %.1f", tt.year)
	}

	// At must not hand out the backing row.
	row := set.At(2000)
	row[0] = 0
	assert.Equal(t, -30000.0, set.Coeffs[0][0])
}

func TestCoefficientSet_AtSingleKnot(t *testing.T) {
	set := mustParse(t, "1 1 1 1 0 2000 2000\n2000\n1 0 -30000\n1 1 -2000\n1 -1 5000\n")

	assert.Equal(t, []float64{-30000, -2000, 5000}, set.At(1950))
	assert.Equal(t, []float64{-30000, -2000, 5000}, set.At(2050))
}

func TestCoefficientSet_Diff(t *testing.T) {
	set := mustParse(t, dipoleSHC(2000, 2020, -30000, -29000))

	sv := set.Diff(2011, 2010)
	assert.InDelta(t, 50, sv[0], 1e-9)
	assert.InDelta(t, 0, sv[1], 1e-9)
}

func TestCoefficientSet_InRange(t *testing.T) {
	set := mustParse(t, dipoleSHC(2000, 2020, -30000, -29000))

	assert.True(t, set.InRange(2000))
	assert.True(t, set.InRange(2020))
	assert.False(t, set.InRange(2020.5))
	assert.False(t, set.InRange(1999))
}

func TestEpochStart(t *testing.T) {
	assert.Equal(t, 2020.0, EpochStart(2020.0))
	assert.Equal(t, 2020.0, EpochStart(2024.99))
	assert.Equal(t, 2015.0, EpochStart(2019.5))
	assert.Equal(t, 1900.0, EpochStart(1901))
}
