// Package interp provides bilinear interpolation over regular lat/lon grids.
package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrOutsideGrid is returned when a query point falls outside the grid coverage.
var ErrOutsideGrid = errors.New("point outside grid")

// GridCell is one rectangle of a regular grid with its four corner values.
type GridCell struct {
	X0, X1 float64 // Longitude bounds.
	Y0, Y1 float64 // Latitude bounds.

	// V00 at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1), V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate evaluates
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// with t = (x-x0)/(x1-x0) and u = (y-y0)/(y1-y0).
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 || cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("degenerate grid cell [%.6f, %.6f]x[%.6f, %.6f]", cell.X0, cell.X1, cell.Y0, cell.Y1)
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon || y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("%w: (%.6f, %.6f) not in cell", ErrOutsideGrid, x, y)
	}

	t := math.Max(0, math.Min(1, (x-cell.X0)/(cell.X1-cell.X0)))
	u := math.Max(0, math.Min(1, (y-cell.Y0)/(cell.Y1-cell.Y0)))

	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11, nil
}

// Grid2D is a regular grid. Values[i][j] is the value at (X[j], Y[i]).
type Grid2D struct {
	X      []float64 // Longitudes, strictly increasing.
	Y      []float64 // Latitudes, strictly increasing.
	Values [][]float64
}

// Validate checks shape and axis ordering.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 || len(g.Y) < 2 {
		return fmt.Errorf("grid needs at least 2x2 nodes, got %dx%d", len(g.X), len(g.Y))
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	if !strictlyIncreasing(g.X) {
		return errors.New("X coordinates must be strictly increasing")
	}
	if !strictlyIncreasing(g.Y) {
		return errors.New("Y coordinates must be strictly increasing")
	}
	return nil
}

// Contains reports whether (x, y) is inside the grid's coverage.
func (g *Grid2D) Contains(x, y float64) bool {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return false
	}
	return x >= g.X[0] && x <= g.X[len(g.X)-1] && y >= g.Y[0] && y <= g.Y[len(g.Y)-1]
}

// InterpolateAt bilinearly interpolates the grid at (x, y).
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}

	xi, ok := cellIndex(g.X, x)
	if !ok {
		return 0, fmt.Errorf("%w: x %.6f not in [%.6f, %.6f]", ErrOutsideGrid, x, g.X[0], g.X[len(g.X)-1])
	}
	yi, ok := cellIndex(g.Y, y)
	if !ok {
		return 0, fmt.Errorf("%w: y %.6f not in [%.6f, %.6f]", ErrOutsideGrid, y, g.Y[0], g.Y[len(g.Y)-1])
	}

	return BilinearInterpolate(GridCell{
		X0:  g.X[xi],
		X1:  g.X[xi+1],
		Y0:  g.Y[yi],
		Y1:  g.Y[yi+1],
		V00: g.Values[yi][xi],
		V10: g.Values[yi][xi+1],
		V01: g.Values[yi+1][xi],
		V11: g.Values[yi+1][xi+1],
	}, x, y)
}

// cellIndex returns i such that axis[i] <= v <= axis[i+1].
func cellIndex(axis []float64, v float64) (int, bool) {
	n := len(axis)
	if v < axis[0] || v > axis[n-1] {
		return 0, false
	}
	i := sort.SearchFloat64s(axis, v)
	switch {
	case i == 0:
		return 0, true
	case i >= n-1:
		return n - 2, true
	}
	if axis[i] == v {
		return i, true
	}
	return i - 1, true
}

func strictlyIncreasing(axis []float64) bool {
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return false
		}
	}
	return true
}
