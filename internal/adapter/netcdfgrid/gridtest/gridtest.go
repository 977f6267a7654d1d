// Package gridtest writes small NetCDF grids for tests.
package gridtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/stretchr/testify/require"
)

// Grid describes a fixture. Values are indexed [lat][lon] unless LonMajor is set, in which
// case the data variable is stored [lon][lat] and Values is indexed accordingly.
type Grid struct {
	LatName  string
	LonName  string
	DataName string
	Lats     []float64
	Lons     []float64
	Values   [][]float32
	LonMajor bool
	Scale    float64 // Written as scale_factor when non-zero.
}

// Write creates the NetCDF file at path.
func Write(t *testing.T, path string, g Grid) {
	t.Helper()

	if g.LatName == "" {
		g.LatName = "lat"
	}
	if g.LonName == "" {
		g.LonName = "lon"
	}

	//nolint:gosec // test directory permissions
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	latDim, err := f.AddDim(g.LatName, uint64(len(g.Lats)))
	require.NoError(t, err)
	lonDim, err := f.AddDim(g.LonName, uint64(len(g.Lons)))
	require.NoError(t, err)

	vlat, err := f.AddVar(g.LatName, netcdf.DOUBLE, []netcdf.Dim{latDim})
	require.NoError(t, err)
	vlon, err := f.AddVar(g.LonName, netcdf.DOUBLE, []netcdf.Dim{lonDim})
	require.NoError(t, err)

	dataDims := []netcdf.Dim{latDim, lonDim}
	if g.LonMajor {
		dataDims = []netcdf.Dim{lonDim, latDim}
	}
	vdata, err := f.AddVar(g.DataName, netcdf.FLOAT, dataDims)
	require.NoError(t, err)
	if g.Scale != 0 {
		require.NoError(t, vdata.Attr("scale_factor").WriteFloat64s([]float64{g.Scale}))
	}

	require.NoError(t, f.EndDef())
	require.NoError(t, vlat.WriteFloat64s(g.Lats))
	require.NoError(t, vlon.WriteFloat64s(g.Lons))

	var flat []float32
	for _, row := range g.Values {
		flat = append(flat, row...)
	}
	require.NoError(t, vdata.WriteFloat32s(flat))
}

// Ramp returns a [len(lats)][len(lons)] grid with value = latFactor*lat + lonFactor*lon.
func Ramp(lats, lons []float64, latFactor, lonFactor float64) [][]float32 {
	values := make([][]float32, len(lats))
	for i, lat := range lats {
		values[i] = make([]float32, len(lons))
		for j, lon := range lons {
			values[i][j] = float32(latFactor*lat + lonFactor*lon)
		}
	}
	return values
}

// Axis returns n values starting at start with the given step.
func Axis(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}
