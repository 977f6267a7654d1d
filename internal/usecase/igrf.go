package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go.ngs.io/magsurvey/internal/adapter/store"
	"go.ngs.io/magsurvey/internal/adapter/store/elevation"
	"go.ngs.io/magsurvey/internal/domain"
	"go.ngs.io/magsurvey/internal/observability"
)

// Altitude sources reported in IGRFResponse.AltitudeSource.
const (
	AltitudeFromRequest   = "request"
	AltitudeFromElevation = "elevation"
	AltitudeDefault       = "default"
)

// IGRFRequest encapsulates an IGRF correction request.
type IGRFRequest struct {
	Stations []domain.StationRecord

	// AltitudeKm overrides the survey altitude above the ellipsoid. When nil the elevation
	// store is consulted at the mean station position, then 0 km is assumed.
	AltitudeKm *float64

	// SurveyDate, when set, replaces every station date for the model evaluation.
	SurveyDate string

	ResidualMode domain.ResidualMode
}

// IGRFResponse contains the corrected readings and how they were computed.
type IGRFResponse struct {
	RunID          string
	Model          string
	Latitude       float64 // Representative (mean) geodetic latitude.
	Longitude      float64 // Representative (mean) longitude.
	AltitudeKm     float64
	AltitudeSource string
	ResidualMode   domain.ResidualMode
	Results        []domain.IGRFResult
	Warnings       []string
}

// IGRFCorrection removes the IGRF main field from survey readings.
type IGRFCorrection struct {
	coeffs      store.CoefficientLoader
	elevation   elevation.Store // Optional.
	metrics     *observability.Metrics
	logger      *slog.Logger
	maxStations int
}

// NewIGRFCorrection creates the IGRF use case. elev and metrics may be nil; maxStations
// <= 0 disables the request size limit.
func NewIGRFCorrection(
	coeffs store.CoefficientLoader,
	elev elevation.Store,
	metrics *observability.Metrics,
	logger *slog.Logger,
	maxStations int,
) *IGRFCorrection {
	if logger == nil {
		logger = slog.Default()
	}
	return &IGRFCorrection{
		coeffs:      coeffs,
		elevation:   elev,
		metrics:     metrics,
		logger:      logger,
		maxStations: maxStations,
	}
}

// Model returns the loaded coefficient set.
func (uc *IGRFCorrection) Model() (*domain.CoefficientSet, error) {
	coeffs, err := uc.coeffs.Coefficients()
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.ModelLoaded.Set(1)
	}
	return coeffs, nil
}

// Field evaluates the model at a single point.
func (uc *IGRFCorrection) Field(ctx context.Context, lat, lon, altKm, year float64) (result domain.FieldResult, err error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveRun(observability.KindField, 1, time.Since(start).Seconds(), err) }()

	if err := ctx.Err(); err != nil {
		return domain.FieldResult{}, err
	}
	coeffs, err := uc.Model()
	if err != nil {
		return domain.FieldResult{}, err
	}
	if !coeffs.InRange(year) {
		uc.logger.WarnContext(ctx, "date outside model validity, extrapolating",
			"year", year, "start_year", coeffs.Params.StartYear, "end_year", coeffs.Params.EndYear)
	}
	result, err = domain.NewFieldModel(coeffs).Evaluate(lat, lon, altKm, year)
	if err != nil {
		return domain.FieldResult{}, err
	}
	if domain.AtPole(90 - lat) {
		uc.logger.WarnContext(ctx, "position is on a geographic pole", "latitude", lat, "longitude", lon)
	}
	return result, nil
}

// Validate checks the request shape before any model work.
func (r *IGRFRequest) Validate(maxStations int) error {
	if len(r.Stations) == 0 {
		return fmt.Errorf("%w: no station readings", domain.ErrFormat)
	}
	if maxStations > 0 && len(r.Stations) > maxStations {
		return fmt.Errorf("%w: %d station readings exceed the limit of %d",
			domain.ErrFormat, len(r.Stations), maxStations)
	}
	if r.AltitudeKm != nil && (*r.AltitudeKm < -10 || *r.AltitudeKm > 1000) {
		return fmt.Errorf("%w: altitude %.3f km outside [-10, 1000]", domain.ErrDomain, *r.AltitudeKm)
	}
	return nil
}

// Execute corrects every station reading for the main field at the representative
// survey position. Field results are computed once per distinct decimal year.
func (uc *IGRFCorrection) Execute(ctx context.Context, req IGRFRequest) (resp *IGRFResponse, err error) {
	start := time.Now()
	defer func() {
		uc.metrics.ObserveRun(observability.KindIGRF, len(req.Stations), time.Since(start).Seconds(), err)
	}()

	if err := req.Validate(uc.maxStations); err != nil {
		return nil, err
	}
	mode := req.ResidualMode
	if mode == "" {
		mode = domain.ResidualTotal
	}

	coeffs, err := uc.Model()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := uc.logger.With("run_id", runID, "kind", observability.KindIGRF)

	lat, lon := domain.MeanPosition(req.Stations)
	altKm, altSource := uc.resolveAltitude(ctx, logger, req.AltitudeKm, lat, lon)

	resp = &IGRFResponse{
		RunID:          runID,
		Model:          coeffs.Name,
		Latitude:       lat,
		Longitude:      lon,
		AltitudeKm:     altKm,
		AltitudeSource: altSource,
		ResidualMode:   mode,
	}

	pos := domain.GeodeticToGeocentric(altKm, 90-lat)
	if domain.AtPole(pos.Colat) {
		logger.WarnContext(ctx, "survey position is on a geographic pole", "latitude", lat)
		resp.Warnings = append(resp.Warnings, "survey position is on a geographic pole")
	}

	var fixedYear *float64
	if req.SurveyDate != "" {
		y, err := domain.DecimalYear(req.SurveyDate)
		if err != nil {
			return nil, err
		}
		fixedYear = &y
	}

	model := domain.NewFieldModel(coeffs)
	cache := make(map[float64]domain.FieldResult)
	results := make([]domain.IGRFResult, len(req.Stations))
	for i, s := range req.Stations {
		year := domain.DecimalYearOf(s.Timestamp)
		if fixedYear != nil {
			year = *fixedYear
		}

		field, ok := cache[year]
		if !ok {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !coeffs.InRange(year) {
				msg := fmt.Sprintf("year %.4f outside model validity [%.0f, %.0f], extrapolating",
					year, coeffs.Params.StartYear, coeffs.Params.EndYear)
				logger.WarnContext(ctx, "date outside model validity, extrapolating", "year", year)
				resp.Warnings = append(resp.Warnings, msg)
			}
			field, err = model.EvaluateAt(pos, lon, year)
			if err != nil {
				return nil, fmt.Errorf("evaluating model for station %d: %w", i, err)
			}
			cache[year] = field
		}
		results[i] = domain.NewIGRFResult(s, year, field)
	}
	resp.Results = results

	logger.InfoContext(ctx, "igrf correction complete",
		"stations", len(results),
		"distinct_years", len(cache),
		"latitude", lat,
		"longitude", lon,
		"altitude_km", altKm,
		"altitude_source", altSource,
		"duration", time.Since(start),
	)
	return resp, nil
}

// resolveAltitude picks the survey altitude: request value, then terrain height above the
// ellipsoid (seafloor clamped to 0 km), then 0 km.
func (uc *IGRFCorrection) resolveAltitude(
	ctx context.Context,
	logger *slog.Logger,
	requested *float64,
	lat, lon float64,
) (float64, string) {
	if requested != nil {
		return *requested, AltitudeFromRequest
	}
	if uc.elevation == nil {
		return 0, AltitudeDefault
	}

	h, err := uc.elevation.EllipsoidalHeight(lat, lon)
	if err != nil {
		if !errors.Is(err, elevation.ErrNotConfigured) {
			logger.WarnContext(ctx, "elevation lookup failed, using 0 km", "error", err)
		}
		return 0, AltitudeDefault
	}
	altKm := h / 1000
	if altKm < 0 {
		altKm = 0
	}
	return altKm, AltitudeFromElevation
}
