package usecase

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.ngs.io/magsurvey/internal/adapter/store/elevation"
	"go.ngs.io/magsurvey/internal/domain"
)

// dipoleSHC is an axial dipole with g10 going from -30000 nT (2000) to -29000 nT (2020).
const dipoleSHC = `# axial dipole
1 1 2 2 20 2000.0 2020.0
2000.0 2020.0
1 0 -30000.0 -29000.0
1 1 0.0 0.0
1 -1 0.0 0.0
`

type fakeLoader struct {
	set *domain.CoefficientSet
	err error
}

func (f fakeLoader) Coefficients() (*domain.CoefficientSet, error) {
	return f.set, f.err
}

func dipoleLoader(t *testing.T) fakeLoader {
	t.Helper()
	set, err := domain.ParseCoefficients(strings.NewReader(dipoleSHC), "dipole.shc")
	require.NoError(t, err)
	return fakeLoader{set: set}
}

type fakeElevation struct {
	heightM float64
	err     error
}

var _ elevation.Store = fakeElevation{}

func (f fakeElevation) Elevation(_, _ float64) (float64, error)         { return f.heightM, f.err }
func (f fakeElevation) EllipsoidalHeight(_, _ float64) (float64, error) { return f.heightM, f.err }
func (f fakeElevation) Close() error                                    { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func station(t *testing.T, date, clock string, lat, lon, field float64) domain.StationRecord {
	t.Helper()
	s, err := domain.NewStationRecord(date, clock, lat, lon, field)
	require.NoError(t, err)
	return s
}

func base(t *testing.T, date, clock string, field float64) domain.BaseStationRecord {
	t.Helper()
	b, err := domain.NewBaseStationRecord(date, clock, field)
	require.NoError(t, err)
	return b
}
