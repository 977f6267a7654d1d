package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go.ngs.io/magsurvey/internal/domain"
	"go.ngs.io/magsurvey/internal/observability"
)

// staleMatch is the base-station time gap above which a match is reported as a warning.
const staleMatch = 6 * time.Hour

// DiurnalRequest pairs survey readings with a base-station series.
type DiurnalRequest struct {
	Stations []domain.StationRecord
	Base     []domain.BaseStationRecord
}

// DiurnalResponse contains the corrected readings.
type DiurnalResponse struct {
	RunID       string
	Matches     []domain.DiurnalMatch
	MaxTimeDiff time.Duration
	Warnings    []string
}

// DiurnalCorrection removes the daily variation recorded at a base station from survey
// readings.
type DiurnalCorrection struct {
	metrics     *observability.Metrics
	logger      *slog.Logger
	maxStations int
}

// NewDiurnalCorrection creates the diurnal use case. metrics may be nil; maxStations <= 0
// disables the request size limit.
func NewDiurnalCorrection(metrics *observability.Metrics, logger *slog.Logger, maxStations int) *DiurnalCorrection {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiurnalCorrection{metrics: metrics, logger: logger, maxStations: maxStations}
}

// Validate checks the request shape.
func (r *DiurnalRequest) Validate(maxStations int) error {
	if len(r.Stations) == 0 {
		return fmt.Errorf("%w: no station readings", domain.ErrFormat)
	}
	if len(r.Base) == 0 {
		return fmt.Errorf("%w: no base-station readings", domain.ErrMatch)
	}
	if maxStations > 0 && (len(r.Stations) > maxStations || len(r.Base) > maxStations) {
		return fmt.Errorf("%w: %d station and %d base readings exceed the limit of %d",
			domain.ErrFormat, len(r.Stations), len(r.Base), maxStations)
	}
	return nil
}

// Execute matches every station reading to its nearest base reading in time.
func (uc *DiurnalCorrection) Execute(ctx context.Context, req DiurnalRequest) (resp *DiurnalResponse, err error) {
	start := time.Now()
	defer func() {
		uc.metrics.ObserveRun(observability.KindDiurnal, len(req.Stations), time.Since(start).Seconds(), err)
	}()

	if err := req.Validate(uc.maxStations); err != nil {
		return nil, err
	}

	corrector, err := domain.NewDiurnalCorrector(req.Base)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := uc.logger.With("run_id", runID, "kind", observability.KindDiurnal)
	resp = &DiurnalResponse{RunID: runID, Matches: make([]domain.DiurnalMatch, len(req.Stations))}

	stale := 0
	for i, s := range req.Stations {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		m := corrector.Correct(s)
		resp.Matches[i] = m
		if m.TimeDiff > resp.MaxTimeDiff {
			resp.MaxTimeDiff = m.TimeDiff
		}
		if m.TimeDiff > staleMatch {
			stale++
		}
	}
	if stale > 0 {
		msg := fmt.Sprintf("%d station readings matched a base reading more than %s away", stale, staleMatch)
		logger.WarnContext(ctx, "base-station coverage gap", "stations", stale, "max_time_diff", resp.MaxTimeDiff)
		resp.Warnings = append(resp.Warnings, msg)
	}

	logger.InfoContext(ctx, "diurnal correction complete",
		"stations", len(req.Stations),
		"base_readings", len(req.Base),
		"max_time_diff", resp.MaxTimeDiff,
		"duration", time.Since(start),
	)
	return resp, nil
}
