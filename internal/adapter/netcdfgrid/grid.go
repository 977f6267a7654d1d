// Package netcdfgrid reads regional subsets of global lat/lon NetCDF grids.
package netcdfgrid

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/magsurvey/internal/adapter/interp"
)

// Variables lists candidate variable names, tried in order.
type Variables struct {
	Lat  []string
	Lon  []string
	Data []string
}

func (v Variables) withDefaults() Variables {
	return Variables{
		Lat:  append(append([]string{}, v.Lat...), "latitude", "lat", "y"),
		Lon:  append(append([]string{}, v.Lon...), "longitude", "lon", "x"),
		Data: append(append([]string{}, v.Data...), "data", "z"),
	}
}

// LoadSubset reads the part of a 2D grid within ±margin degrees of (lat, lon). A margin of
// 0 loads the whole grid. The returned grid has ascending axes; longitudes stay in the
// file's convention (see NormalizeLon), except that a window on a global grid that runs
// past the 0/360 seam or the antimeridian borrows columns from the other edge, shifted by
// 360 degrees.
func LoadSubset(path string, vars Variables, lat, lon, margin float64) (*interp.Grid2D, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	vars = vars.withDefaults()

	latData, err := readAxis(nc, vars.Lat)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lonData, err := readAxis(nc, vars.Lon)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	if len(latData) < 2 || len(lonData) < 2 {
		return nil, fmt.Errorf("grid axes too short: %d lat x %d lon", len(latData), len(lonData))
	}

	dataVar, err := findVar(nc, vars.Data)
	if err != nil {
		return nil, err
	}

	latStart, latEnd := 0, len(latData)
	lonStart, lonEnd := 0, len(lonData)
	var seam seamColumns
	if margin > 0 {
		latStart, latEnd = window(latData, lat-margin, lat+margin)
		target := NormalizeLon(lonData, lon)
		lonStart, lonEnd = window(lonData, target-margin, target+margin)
		seam = wrapColumns(lonData, target-margin, target+margin, lonStart, lonEnd)
	}

	dims, err := dataVar.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("expected 2D data, got %dD", len(dims))
	}
	dim0, err := dims[0].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim0 length: %w", err)
	}
	dim1, err := dims[1].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim1 length: %w", err)
	}

	nLat, nLon := uint64(len(latData)), uint64(len(lonData)) //nolint:gosec // lengths come from uint64 dims
	var lonMajor bool
	switch {
	case dim0 == nLat && dim1 == nLon:
	case dim0 == nLon && dim1 == nLat:
		lonMajor = true
	default:
		return nil, fmt.Errorf("dimension mismatch: data is [%d, %d], axes are %d lat x %d lon", dim0, dim1, nLat, nLon)
	}

	read := func(col, cols int) ([][]float64, error) {
		return readRows(dataVar, lonMajor, latStart, latEnd-latStart, col, cols)
	}
	values, err := read(lonStart, lonEnd-lonStart)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	lons := append([]float64(nil), lonData[lonStart:lonEnd]...)

	if seam.below > 0 {
		from := seam.belowEnd - seam.below
		west, err := read(from, seam.below)
		if err != nil {
			return nil, fmt.Errorf("failed to read data west of the seam: %w", err)
		}
		values = joinColumns(west, values)
		lons = append(shifted(lonData[from:seam.belowEnd], -360), lons...)
	}
	if seam.above > 0 {
		east, err := read(seam.aboveStart, seam.above)
		if err != nil {
			return nil, fmt.Errorf("failed to read data east of the seam: %w", err)
		}
		values = joinColumns(values, east)
		lons = append(lons, shifted(lonData[seam.aboveStart:seam.aboveStart+seam.above], 360)...)
	}

	grid := &interp.Grid2D{
		X:      lons,
		Y:      append([]float64(nil), latData[latStart:latEnd]...),
		Values: values,
	}
	ascending(grid)

	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	return grid, nil
}

// Covers reports whether a grid loaded by LoadSubset contains (lat, lon).
func Covers(grid *interp.Grid2D, lat, lon float64) bool {
	if grid == nil {
		return false
	}
	_, ok := gridLon(grid, lat, lon)
	return ok
}

// Interpolate evaluates a grid loaded by LoadSubset at (lat, lon).
func Interpolate(grid *interp.Grid2D, lat, lon float64) (float64, error) {
	x, _ := gridLon(grid, lat, lon)
	return grid.InterpolateAt(x, lat)
}

// gridLon returns the longitude equivalent to lon, modulo 360, that falls inside the
// grid. Grids loaded across the seam extend past the file's own longitude range.
func gridLon(grid *interp.Grid2D, lat, lon float64) (float64, bool) {
	base := math.Mod(lon, 360)
	for _, x := range []float64{base, base + 360, base - 360} {
		if grid.Contains(x, lat) {
			return x, true
		}
	}
	return lon, false
}

// NormalizeLon maps lon into [0, 360) when the axis uses that convention.
func NormalizeLon(axis []float64, lon float64) float64 {
	if !wrapsAt360(axis) {
		return lon
	}
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

func wrapsAt360(axis []float64) bool {
	if len(axis) == 0 {
		return false
	}
	lo, hi := axis[0], axis[len(axis)-1]
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo >= 0 && hi > 180
}

// seamColumns describes the columns taken from the far edge of a global longitude axis
// when the window runs past one end: below columns end (exclusive) at belowEnd and are
// shifted by -360, above columns start at aboveStart and are shifted by +360.
type seamColumns struct {
	below, belowEnd   int
	above, aboveStart int
}

// wrapColumns finds the seam columns needed to cover [lo, hi] on an ascending axis that
// spans the whole globe. Axes that repeat the first meridian at the end (-180..180) do
// not duplicate it.
func wrapColumns(axis []float64, lo, hi float64, start, end int) seamColumns {
	var seam seamColumns
	n := len(axis)
	if !globalLon(axis) {
		return seam
	}
	first, last := axis[0], axis[n-1]

	if start == 0 && lo < first {
		seam.belowEnd = n
		for seam.belowEnd > end && axis[seam.belowEnd-1]-360 >= first {
			seam.belowEnd--
		}
		for i := seam.belowEnd - 1; i >= end && axis[i]-360 >= lo; i-- {
			seam.below++
		}
		seam.below = min(seam.below+1, seam.belowEnd-end)
	}
	if end == n && hi > last {
		for seam.aboveStart < start && axis[seam.aboveStart]+360 <= last {
			seam.aboveStart++
		}
		for i := seam.aboveStart; i < start && axis[i]+360 <= hi; i++ {
			seam.above++
		}
		seam.above = min(seam.above+1, start-seam.aboveStart)
	}
	return seam
}

// globalLon reports whether an ascending longitude axis covers all 360 degrees, allowing
// for the gap of one node spacing between its last and first meridian.
func globalLon(axis []float64) bool {
	n := len(axis)
	if n < 2 || axis[1] <= axis[0] {
		return false
	}
	step := axis[1] - axis[0]
	return axis[n-1]-axis[0]+step >= 360-step/2
}

func shifted(lons []float64, by float64) []float64 {
	out := make([]float64, len(lons))
	for i, v := range lons {
		out[i] = v + by
	}
	return out
}

// joinColumns concatenates two lat-major blocks with the same rows side by side.
func joinColumns(left, right [][]float64) [][]float64 {
	out := make([][]float64, len(left))
	for i := range left {
		out[i] = append(append(make([]float64, 0, len(left[i])+len(right[i])), left[i]...), right[i]...)
	}
	return out
}

func findVar(nc netcdf.Dataset, names []string) (netcdf.Var, error) {
	for _, name := range names {
		if v, err := nc.Var(name); err == nil {
			return v, nil
		}
	}
	return netcdf.Var{}, fmt.Errorf("variable not found (tried: %v)", names)
}

func readAxis(nc netcdf.Dataset, names []string) ([]float64, error) {
	v, err := findVar(nc, names)
	if err != nil {
		return nil, err
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D axis, got %dD", len(dims))
	}
	n, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	return readFlat(v, []uint64{0}, []uint64{n}, int(n)) //nolint:gosec // axis length fits in int
}

// window returns the half-open index range of axis nodes within [lo, hi], widened by one
// node on each side and never shorter than 2. Works for ascending and descending axes.
func window(axis []float64, lo, hi float64) (start, end int) {
	n := len(axis)
	first, last := -1, -1
	for i, v := range axis {
		if v >= lo && v <= hi {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		first = nearest(axis, (lo+hi)/2)
		last = first
	}

	start = max(first-1, 0)
	end = min(last+2, n)
	if end-start < 2 {
		if start > 0 {
			start--
		} else {
			end = min(start+2, n)
		}
	}
	return start, end
}

func nearest(axis []float64, target float64) int {
	best := 0
	for i, v := range axis {
		if math.Abs(v-target) < math.Abs(axis[best]-target) {
			best = i
		}
	}
	return best
}

// readRows reads latCount x lonCount values as lat-major rows, whatever the storage order.
func readRows(v netcdf.Var, lonMajor bool, latStart, latCount, lonStart, lonCount int) ([][]float64, error) {
	if !lonMajor {
		return readBlock(v, latStart, lonStart, latCount, lonCount)
	}
	block, err := readBlock(v, lonStart, latStart, lonCount, latCount)
	if err != nil {
		return nil, err
	}
	return transpose(block), nil
}

// readBlock reads a [rows x cols] hyperslab starting at (row, col).
func readBlock(v netcdf.Var, row, col, rows, cols int) ([][]float64, error) {
	//nolint:gosec // indices are non-negative and bounded by dimension lengths
	flat, err := readFlat(v, []uint64{uint64(row), uint64(col)}, []uint64{uint64(rows), uint64(cols)}, rows*cols)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, rows)
	for i := range values {
		values[i] = flat[i*cols : (i+1)*cols]
	}
	return values, nil
}

// readFlat reads n values of a numeric variable as float64, applying scale_factor and
// add_offset when present.
func readFlat(v netcdf.Var, start, count []uint64, n int) ([]float64, error) {
	varType, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get variable type: %w", err)
	}

	out := make([]float64, n)
	switch varType {
	case netcdf.DOUBLE:
		err = v.ReadFloat64Slice(out, start, count)
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err = v.ReadFloat32Slice(buf, start, count); err == nil {
			for i, x := range buf {
				out[i] = float64(x)
			}
		}
	case netcdf.INT:
		buf := make([]int32, n)
		if err = v.ReadInt32Slice(buf, start, count); err == nil {
			for i, x := range buf {
				out[i] = float64(x)
			}
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err = v.ReadInt16Slice(buf, start, count); err == nil {
			for i, x := range buf {
				out[i] = float64(x)
			}
		}
	case netcdf.BYTE, netcdf.UBYTE, netcdf.CHAR, netcdf.USHORT, netcdf.UINT, netcdf.INT64, netcdf.UINT64, netcdf.STRING:
		return nil, fmt.Errorf("unsupported data type: %v (expected DOUBLE, FLOAT, INT, or SHORT)", varType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %v values: %w", varType, err)
	}

	scale, hasScale := scalarAttr(v, "scale_factor")
	offset, hasOffset := scalarAttr(v, "add_offset")
	if (hasScale && scale != 0 && scale != 1) || (hasOffset && offset != 0) {
		if !hasScale || scale == 0 {
			scale = 1
		}
		for i := range out {
			out[i] = out[i]*scale + offset
		}
	}
	return out, nil
}

func scalarAttr(v netcdf.Var, name string) (float64, bool) {
	attr := v.Attr(name)
	n, err := attr.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	f64 := make([]float64, n)
	if err := attr.ReadFloat64s(f64); err == nil {
		return f64[0], true
	}
	f32 := make([]float32, n)
	if err := attr.ReadFloat32s(f32); err == nil {
		return float64(f32[0]), true
	}
	i32 := make([]int32, n)
	if err := attr.ReadInt32s(i32); err == nil {
		return float64(i32[0]), true
	}
	return 0, false
}

func transpose(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return data
	}
	out := make([][]float64, len(data[0]))
	for i := range out {
		out[i] = make([]float64, len(data))
		for j := range data {
			out[i][j] = data[j][i]
		}
	}
	return out
}

// ascending flips descending axes (north-to-south latitudes are common) in place.
func ascending(g *interp.Grid2D) {
	if len(g.Y) > 1 && g.Y[0] > g.Y[len(g.Y)-1] {
		reverse(g.Y)
		for i, j := 0, len(g.Values)-1; i < j; i, j = i+1, j-1 {
			g.Values[i], g.Values[j] = g.Values[j], g.Values[i]
		}
	}
	if len(g.X) > 1 && g.X[0] > g.X[len(g.X)-1] {
		reverse(g.X)
		for _, row := range g.Values {
			reverse(row)
		}
	}
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
