package netcdfgrid

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/magsurvey/internal/adapter/netcdfgrid/gridtest"
)

var elevationVars = Variables{Lat: []string{"lat"}, Lon: []string{"lon"}, Data: []string{"elevation"}}

func TestLoadSubset_Window(t *testing.T) {
	lats := gridtest.Axis(0, 1, 21)
	lons := gridtest.Axis(-10, 1, 21)
	path := filepath.Join(t.TempDir(), "ramp.nc")
	gridtest.Write(t, path, gridtest.Grid{
		DataName: "elevation",
		Lats:     lats,
		Lons:     lons,
		Values:   gridtest.Ramp(lats, lons, 10, 1),
	})

	grid, err := LoadSubset(path, elevationVars, 10, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{7, 8, 9, 10, 11, 12, 13}, grid.Y)
	assert.Equal(t, []float64{-3, -2, -1, 0, 1, 2, 3}, grid.X)

	v, err := Interpolate(grid, 10.5, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 105.25, v, 1e-4)

	assert.True(t, Covers(grid, 12, 2))
	assert.False(t, Covers(grid, 15, 0))
}

func TestLoadSubset_WholeGrid(t *testing.T) {
	lats := gridtest.Axis(0, 1, 3)
	lons := gridtest.Axis(0, 1, 4)
	path := filepath.Join(t.TempDir(), "small.nc")
	gridtest.Write(t, path, gridtest.Grid{DataName: "z", Lats: lats, Lons: lons, Values: gridtest.Ramp(lats, lons, 1, 1)})

	grid, err := LoadSubset(path, Variables{}, 0, 0, 0)
	require.NoError(t, err)
	assert.Len(t, grid.Y, 3)
	assert.Len(t, grid.X, 4)
}

func TestLoadSubset_DescendingLatitude(t *testing.T) {
	lats := gridtest.Axis(10, -1, 11) // 10 .. 0
	lons := gridtest.Axis(0, 1, 5)
	path := filepath.Join(t.TempDir(), "desc.nc")
	gridtest.Write(t, path, gridtest.Grid{
		DataName: "geoid",
		Lats:     lats,
		Lons:     lons,
		Values:   gridtest.Ramp(lats, lons, 1, 0),
	})

	grid, err := LoadSubset(path, Variables{Data: []string{"geoid"}}, 5, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 4, 5, 6, 7}, grid.Y)
	v, err := Interpolate(grid, 5.5, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, v, 1e-5)
}

func TestLoadSubset_LonMajorAndScale(t *testing.T) {
	lats := []float64{0, 1}
	lons := []float64{0, 1, 2}
	// Stored [lon][lat].
	values := [][]float32{
		{0, 10},
		{2, 12},
		{4, 14},
	}
	path := filepath.Join(t.TempDir(), "lonmajor.nc")
	gridtest.Write(t, path, gridtest.Grid{
		DataName: "elevation",
		Lats:     lats,
		Lons:     lons,
		Values:   values,
		LonMajor: true,
		Scale:    0.5,
	})

	grid, err := LoadSubset(path, elevationVars, 0, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 1, 2}, {5, 6, 7}}, grid.Values)
}

func TestLoadSubset_Lon360(t *testing.T) {
	lats := []float64{30, 31, 32}
	lons := []float64{230, 231, 232, 233}
	path := filepath.Join(t.TempDir(), "wrap.nc")
	gridtest.Write(t, path, gridtest.Grid{
		DataName: "elevation",
		Lats:     lats,
		Lons:     lons,
		Values:   gridtest.Ramp(lats, lons, 0, 1),
	})

	grid, err := LoadSubset(path, elevationVars, 31, -130, 2)
	require.NoError(t, err)

	v, err := Interpolate(grid, 31, -129.5)
	require.NoError(t, err)
	assert.InDelta(t, 230.5, v, 1e-4)
	assert.True(t, Covers(grid, 31, -128))
}

func TestLoadSubset_WrapsAt360Seam(t *testing.T) {
	lats := gridtest.Axis(0, 1, 3)
	lons := gridtest.Axis(0, 1, 360) // 0 .. 359
	path := filepath.Join(t.TempDir(), "global360.nc")
	gridtest.Write(t, path, gridtest.Grid{
		DataName: "elevation",
		Lats:     lats,
		Lons:     lons,
		Values:   gridtest.Ramp(lats, lons, 0, 1),
	})

	grid, err := LoadSubset(path, elevationVars, 1, -0.2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{358, 359, 360, 361}, grid.X)

	require.True(t, Covers(grid, 1, -0.2))
	assert.True(t, Covers(grid, 1, 359.5))
	assert.True(t, Covers(grid, 1, 0.5))

	// Between 359 (value 359) and the wrapped 0 meridian (value 0).
	v, err := Interpolate(grid, 1, -0.2)
	require.NoError(t, err)
	assert.InDelta(t, 71.8, v, 1e-4)

	v, err = Interpolate(grid, 1, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-4)
}

func TestLoadSubset_WrapsAtAntimeridian(t *testing.T) {
	lats := gridtest.Axis(0, 1, 3)
	lons := gridtest.Axis(-180, 1, 361) // -180 .. 180, first meridian repeated
	path := filepath.Join(t.TempDir(), "global180.nc")
	gridtest.Write(t, path, gridtest.Grid{
		DataName: "elevation",
		Lats:     lats,
		Lons:     lons,
		Values:   gridtest.Ramp(lats, lons, 0, 1),
	})

	grid, err := LoadSubset(path, elevationVars, 1, -179.5, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-181, -180, -179, -178}, grid.X)

	assert.True(t, Covers(grid, 1, 179.5))
	v, err := Interpolate(grid, 1, 179.5)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, v, 1e-4)

	v, err = Interpolate(grid, 1, -179.5)
	require.NoError(t, err)
	assert.InDelta(t, -179.5, v, 1e-4)

	grid, err = LoadSubset(path, elevationVars, 1, 179.8, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{178, 179, 180, 181}, grid.X)
	assert.True(t, Covers(grid, 1, -179.9))
}

func TestLoadSubset_RegionalGridDoesNotWrap(t *testing.T) {
	lats := gridtest.Axis(0, 1, 3)
	lons := gridtest.Axis(0, 1, 10)
	path := filepath.Join(t.TempDir(), "regional.nc")
	gridtest.Write(t, path, gridtest.Grid{DataName: "elevation", Lats: lats, Lons: lons, Values: gridtest.Ramp(lats, lons, 0, 1)})

	grid, err := LoadSubset(path, elevationVars, 1, 0.5, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3}, grid.X)
	assert.False(t, Covers(grid, 1, -0.5))
}

func TestLoadSubset_Errors(t *testing.T) {
	_, err := LoadSubset(filepath.Join(t.TempDir(), "missing.nc"), elevationVars, 0, 0, 1)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "novar.nc")
	gridtest.Write(t, path, gridtest.Grid{DataName: "other", Lats: []float64{0, 1}, Lons: []float64{0, 1}, Values: [][]float32{{1, 2}, {3, 4}}})
	_, err = LoadSubset(path, elevationVars, 0, 0, 1)
	assert.ErrorContains(t, err, "variable not found")
}

func TestNormalizeLon(t *testing.T) {
	assert.Equal(t, -130.0, NormalizeLon([]float64{-180, 180}, -130))
	assert.Equal(t, 230.0, NormalizeLon([]float64{0, 359}, -130))
	assert.Equal(t, 10.0, NormalizeLon([]float64{0, 359}, 370))
}
