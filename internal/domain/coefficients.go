package domain

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ModelParams holds the 7-field header of a spherical-harmonic coefficient file.
type ModelParams struct {
	NMin      int     // Lowest harmonic degree present in the file.
	NMax      int     // Highest harmonic degree present in the file.
	N         int     // Number of knot times.
	Order     int     // Spline order used to build the file (2 = piecewise linear).
	Step      int     // Step between knot times in the source model.
	StartYear float64 // First year of validity.
	EndYear   float64 // Last year of validity.
}

// CoefficientSet is an immutable time series of Gauss coefficients.
//
// Rows are indexed by knot time and always start at degree 1 (g10, g11, h11, g20, ...),
// so every row has NMax·(NMax+2) entries. Degrees below NMin are zero.
type CoefficientSet struct {
	Name   string
	Params ModelParams
	Times  []float64   // Knot times in decimal years, strictly ascending.
	Coeffs [][]float64 // Coeffs[time][coeff].
}

// CoeffCount returns the number of Gauss coefficients in a degree-1-based row up to nmax.
func CoeffCount(nmax int) int {
	return nmax * (nmax + 2)
}

// ParseCoefficients reads a coefficient table in SHC layout:
// '#' comment lines, one 7-field header, then whitespace-separated numbers. The first N
// numbers are the knot times; the rest form rows of N+2 values (degree, order, N knot values).
func ParseCoefficients(r io.Reader, name string) (*CoefficientSet, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		header    []float64
		data      []float64
		lineNo    int
		hasHeader bool
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		values := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line %d: invalid number %q", ErrFormat, name, lineNo, f)
			}
			values[i] = v
		}

		if !hasHeader && len(values) == 7 {
			header = values
			hasHeader = true
			continue
		}
		data = append(data, values...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfiguration, name, err)
	}
	if !hasHeader {
		return nil, fmt.Errorf("%w: %s has no 7-field header", ErrFormat, name)
	}

	params := ModelParams{
		NMin:      int(header[0]),
		NMax:      int(header[1]),
		N:         int(header[2]),
		Order:     int(header[3]),
		Step:      int(header[4]),
		StartYear: header[5],
		EndYear:   header[6],
	}

	return newCoefficientSet(name, params, data)
}

func newCoefficientSet(name string, params ModelParams, data []float64) (*CoefficientSet, error) {
	if params.N < 1 {
		return nil, fmt.Errorf("%w: %s header declares %d knot times", ErrFormat, name, params.N)
	}
	if params.NMin < 1 || params.NMax < params.NMin {
		return nil, fmt.Errorf("%w: %s header has invalid degree range [%d, %d]",
			ErrFormat, name, params.NMin, params.NMax)
	}

	// Rows in the file cover degrees NMin..NMax only.
	fileRows := (params.NMax+1)*(params.NMax+1) - params.NMin*params.NMin
	rowLen := params.N + 2
	want := params.N + fileRows*rowLen
	if len(data) != want {
		return nil, fmt.Errorf("%w: %s has %d values, expected %d (%d knot times + %d rows of %d)",
			ErrFormat, name, len(data), want, params.N, fileRows, rowLen)
	}

	times := make([]float64, params.N)
	copy(times, data[:params.N])
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: %s knot times are not strictly ascending at index %d", ErrFormat, name, i)
		}
	}

	offset := CoeffCount(params.NMin - 1)
	coeffs := make([][]float64, params.N)
	for t := range coeffs {
		coeffs[t] = make([]float64, CoeffCount(params.NMax))
	}
	for k := 0; k < fileRows; k++ {
		row := data[params.N+k*rowLen : params.N+(k+1)*rowLen]
		for t := 0; t < params.N; t++ {
			coeffs[t][offset+k] = row[2+t]
		}
	}

	return &CoefficientSet{
		Name:   name,
		Params: params,
		Times:  times,
		Coeffs: coeffs,
	}, nil
}

// At returns the coefficient row at a decimal year using piecewise-linear interpolation
// between knots. Years outside the knot range are extrapolated from the nearest segment.
func (c *CoefficientSet) At(year float64) []float64 {
	out := make([]float64, len(c.Coeffs[0]))
	if len(c.Times) == 1 {
		copy(out, c.Coeffs[0])
		return out
	}

	i := sort.SearchFloat64s(c.Times, year)
	switch {
	case i == 0:
		i = 1
	case i >= len(c.Times):
		i = len(c.Times) - 1
	}

	t0, t1 := c.Times[i-1], c.Times[i]
	w := (year - t0) / (t1 - t0)
	c0, c1 := c.Coeffs[i-1], c.Coeffs[i]
	for k := range out {
		out[k] = c0[k] + w*(c1[k]-c0[k])
	}
	return out
}

// Diff returns At(a) - At(b). With b = a-1 inside one epoch this is the secular variation
// in units per year.
func (c *CoefficientSet) Diff(a, b float64) []float64 {
	ca := c.At(a)
	cb := c.At(b)
	for k := range ca {
		ca[k] -= cb[k]
	}
	return ca
}

// InRange reports whether year lies inside the model's declared validity interval.
func (c *CoefficientSet) InRange(year float64) bool {
	return year >= c.Params.StartYear && year <= c.Params.EndYear
}

// EpochStart returns the first year of the 5-year epoch enclosing year.
func EpochStart(year float64) float64 {
	return math.Floor((year-1900)/5)*5 + 1900
}
