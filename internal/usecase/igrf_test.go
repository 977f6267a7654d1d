package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/magsurvey/internal/adapter/store/elevation"
	"go.ngs.io/magsurvey/internal/domain"
	"go.ngs.io/magsurvey/internal/observability"
)

// equatorScale is (a/r)^3 on the equator at zero altitude.
var equatorScale = math.Pow(domain.EarthMeanRadiusKm/domain.WGS84EquatorialRadiusKm, 3)

func TestIGRFCorrection_Execute(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	uc := NewIGRFCorrection(dipoleLoader(t), nil, metrics, testLogger(), 0)

	resp, err := uc.Execute(context.Background(), IGRFRequest{
		Stations: []domain.StationRecord{
			station(t, "2010-01-01", "08:00:00", 1, 0, 30000),
			station(t, "2010-01-01", "09:30:00", -1, 0, 29000),
			station(t, "2015-01-01", "10:00:00", 0, 0, 29000),
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "dipole.shc", resp.Model)
	assert.InDelta(t, 0, resp.Latitude, 1e-12)
	assert.Equal(t, AltitudeDefault, resp.AltitudeSource)
	assert.Equal(t, domain.ResidualTotal, resp.ResidualMode)
	assert.Empty(t, resp.Warnings)
	require.Len(t, resp.Results, 3)

	f2010 := 29500 * equatorScale
	first := resp.Results[0]
	assert.InDelta(t, 2010.0, first.DecimalYear, 1e-12)
	assert.InDelta(t, f2010, first.Field.Elements.F, 1e-6)
	assert.InDelta(t, 30000-f2010, first.Residual, 1e-6)
	assert.Equal(t, first.Field, resp.Results[1].Field)

	f2015 := 29250 * equatorScale
	assert.InDelta(t, 2015.0, resp.Results[2].DecimalYear, 1e-12)
	assert.InDelta(t, f2015, resp.Results[2].Field.Elements.F, 1e-6)
	assert.InDelta(t, 2015.0, resp.Results[2].Field.EpochStart, 0)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CorrectionsTotal.WithLabelValues(observability.KindIGRF, observability.OutcomeSuccess)), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.StationsProcessed.WithLabelValues(observability.KindIGRF)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ModelLoaded), 0)
}

func TestIGRFCorrection_SurveyDateOverride(t *testing.T) {
	uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)

	resp, err := uc.Execute(context.Background(), IGRFRequest{
		Stations: []domain.StationRecord{
			station(t, "2003-06-01", "08:00:00", 0, 0, 30000),
			station(t, "2019-06-01", "08:00:00", 0, 0, 30000),
		},
		SurveyDate:   "2010-01-01",
		ResidualMode: domain.ResidualComponents,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ResidualComponents, resp.ResidualMode)
	for _, r := range resp.Results {
		assert.InDelta(t, 2010.0, r.DecimalYear, 1e-12)
		assert.InDelta(t, 29500*equatorScale, r.Field.Elements.F, 1e-6)
	}
}

func TestIGRFCorrection_Altitude(t *testing.T) {
	stations := func(t *testing.T) []domain.StationRecord {
		return []domain.StationRecord{station(t, "2010-01-01", "08:00:00", 0, 0, 30000)}
	}
	requested := 100.0

	tests := []struct {
		name       string
		elev       elevation.Store
		altitude   *float64
		wantKm     float64
		wantSource string
	}{
		{"request wins", fakeElevation{heightM: 2500}, &requested, 100, AltitudeFromRequest},
		{"terrain height", fakeElevation{heightM: 2500}, nil, 2.5, AltitudeFromElevation},
		{"seafloor clamps to zero", fakeElevation{heightM: -3000}, nil, 0, AltitudeFromElevation},
		{"store not configured", fakeElevation{err: elevation.ErrNotConfigured}, nil, 0, AltitudeDefault},
		{"store failure", fakeElevation{err: errors.New("read failed")}, nil, 0, AltitudeDefault},
		{"no store", nil, nil, 0, AltitudeDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewIGRFCorrection(dipoleLoader(t), tt.elev, nil, testLogger(), 0)

			resp, err := uc.Execute(context.Background(), IGRFRequest{Stations: stations(t), AltitudeKm: tt.altitude})
			require.NoError(t, err)

			assert.InDelta(t, tt.wantKm, resp.AltitudeKm, 1e-12)
			assert.Equal(t, tt.wantSource, resp.AltitudeSource)
		})
	}
}

func TestIGRFCorrection_AltitudeLowersField(t *testing.T) {
	uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)
	stations := []domain.StationRecord{station(t, "2010-01-01", "08:00:00", 0, 0, 30000)}

	ground, err := uc.Execute(context.Background(), IGRFRequest{Stations: stations})
	require.NoError(t, err)
	alt := 400.0
	orbit, err := uc.Execute(context.Background(), IGRFRequest{Stations: stations, AltitudeKm: &alt})
	require.NoError(t, err)

	assert.Less(t, orbit.Results[0].Field.Elements.F, ground.Results[0].Field.Elements.F)
}

func TestIGRFCorrection_Warnings(t *testing.T) {
	uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)

	resp, err := uc.Execute(context.Background(), IGRFRequest{
		Stations: []domain.StationRecord{station(t, "2024-01-01", "08:00:00", 90, 0, 60000)},
	})
	require.NoError(t, err)

	require.Len(t, resp.Warnings, 2)
	assert.Contains(t, resp.Warnings[0], "pole")
	assert.Contains(t, resp.Warnings[1], "extrapolating")
	assert.False(t, math.IsNaN(resp.Results[0].Field.Elements.F))
}

func TestIGRFCorrection_Errors(t *testing.T) {
	one := func(t *testing.T) []domain.StationRecord {
		return []domain.StationRecord{station(t, "2010-01-01", "08:00:00", 0, 0, 30000)}
	}
	badAlt := -50.0

	t.Run("no stations", func(t *testing.T) {
		uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)
		_, err := uc.Execute(context.Background(), IGRFRequest{})
		assert.ErrorIs(t, err, domain.ErrFormat)
	})
	t.Run("too many stations", func(t *testing.T) {
		uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 1)
		_, err := uc.Execute(context.Background(), IGRFRequest{Stations: append(one(t), one(t)...)})
		assert.ErrorIs(t, err, domain.ErrFormat)
	})
	t.Run("altitude", func(t *testing.T) {
		uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)
		_, err := uc.Execute(context.Background(), IGRFRequest{Stations: one(t), AltitudeKm: &badAlt})
		assert.ErrorIs(t, err, domain.ErrDomain)
	})
	t.Run("survey date", func(t *testing.T) {
		uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)
		_, err := uc.Execute(context.Background(), IGRFRequest{Stations: one(t), SurveyDate: "someday"})
		assert.ErrorIs(t, err, domain.ErrFormat)
	})
	t.Run("model unavailable", func(t *testing.T) {
		metrics := observability.NewMetricsForTesting()
		loader := fakeLoader{err: domain.ErrConfiguration}
		uc := NewIGRFCorrection(loader, nil, metrics, testLogger(), 0)

		_, err := uc.Execute(context.Background(), IGRFRequest{Stations: one(t)})
		require.ErrorIs(t, err, domain.ErrConfiguration)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.CorrectionsTotal.WithLabelValues(observability.KindIGRF, observability.OutcomeError)), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(metrics.ModelLoaded), 0)
	})
	t.Run("canceled", func(t *testing.T) {
		uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := uc.Execute(ctx, IGRFRequest{Stations: one(t)})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIGRFCorrection_Field(t *testing.T) {
	uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, testLogger(), 0)

	res, err := uc.Field(context.Background(), 0, 0, 0, 2010)
	require.NoError(t, err)
	assert.InDelta(t, 29500*equatorScale, res.Elements.F, 1e-6)

	_, err = uc.Field(context.Background(), 91, 0, 0, 2010)
	assert.ErrorIs(t, err, domain.ErrDomain)
}

func TestIGRFCorrection_FieldWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	uc := NewIGRFCorrection(dipoleLoader(t), nil, nil, logger, 0)

	_, err := uc.Field(context.Background(), 45, 0, 0, 2010)
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	res, err := uc.Field(context.Background(), -90, 0, 0, 2010)
	require.NoError(t, err)
	assert.InDelta(t, -90, res.Elements.I, 1e-3)
	assert.Contains(t, buf.String(), "geographic pole")

	buf.Reset()
	_, err = uc.Field(context.Background(), 10, 0, 0, 2030)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "outside model validity")
	assert.NotContains(t, buf.String(), "geographic pole")
}
