// Package http exposes the correction engine over a gin router.
package http

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"go.ngs.io/magsurvey/internal/domain"
	"go.ngs.io/magsurvey/internal/usecase"
)

// Handler handles HTTP requests for field evaluations and survey corrections.
type Handler struct {
	igrfUC    *usecase.IGRFCorrection
	diurnalUC *usecase.DiurnalCorrection
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewHandler creates a new HTTP handler. A nil clock uses the real clock.
func NewHandler(
	igrfUC *usecase.IGRFCorrection,
	diurnalUC *usecase.DiurnalCorrection,
	clock clockwork.Clock,
	logger *slog.Logger,
) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		igrfUC:    igrfUC,
		diurnalUC: diurnalUC,
		clock:     clock,
		logger:    logger,
	}
}

// GetModel handles GET /v1/model.
func (h *Handler) GetModel(c *gin.Context) {
	coeffs, err := h.igrfUC.Model()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelResponse{
		Name:      coeffs.Name,
		NMin:      coeffs.Params.NMin,
		NMax:      coeffs.Params.NMax,
		StartYear: coeffs.Params.StartYear,
		EndYear:   coeffs.Params.EndYear,
		Knots:     coeffs.Times,
	})
}

// GetField handles GET /v1/igrf/field.
func (h *Handler) GetField(c *gin.Context) {
	lat, err := requiredFloat(c, "lat")
	if err != nil {
		h.respondError(c, err)
		return
	}
	lon, err := requiredFloat(c, "lon")
	if err != nil {
		h.respondError(c, err)
		return
	}

	altKm := 0.0
	if s := c.Query("alt_km"); s != "" {
		if altKm, err = parseFinite(s); err != nil {
			h.respondError(c, fmt.Errorf("%w: invalid alt_km %q", domain.ErrFormat, s))
			return
		}
	}

	year, err := h.queryYear(c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.igrfUC.Field(c.Request.Context(), lat, lon, altKm, year)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fieldResponse(lat, lon, altKm, result))
}

// PostIGRFCorrection handles POST /v1/corrections/igrf.
func (h *Handler) PostIGRFCorrection(c *gin.Context) {
	var body IGRFCorrectionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	mode, err := domain.ParseResidualMode(body.ResidualMode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	stations, err := toStations(body.Stations)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.igrfUC.Execute(c.Request.Context(), usecase.IGRFRequest{
		Stations:     stations,
		AltitudeKm:   body.AltitudeKm,
		SurveyDate:   body.Date,
		ResidualMode: mode,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, igrfResponse(resp))
}

// PostDiurnalCorrection handles POST /v1/corrections/diurnal.
func (h *Handler) PostDiurnalCorrection(c *gin.Context) {
	var body DiurnalCorrectionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	stations, err := toStations(body.Stations)
	if err != nil {
		h.respondError(c, err)
		return
	}
	base, err := toBase(body.Base)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.diurnalUC.Execute(c.Request.Context(), usecase.DiurnalRequest{Stations: stations, Base: base})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, diurnalResponse(resp))
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   h.clock.Now().UTC().Format(time.RFC3339),
	})
}

// queryYear accepts a decimal year ("2021.5") or a calendar date; empty means today.
func (h *Handler) queryYear(s string) (float64, error) {
	if s == "" {
		return domain.DecimalYearOf(h.clock.Now().UTC()), nil
	}
	if y, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return 0, fmt.Errorf("%w: invalid date %q", domain.ErrFormat, s)
		}
		return y, nil
	}
	return domain.DecimalYear(s)
}

func requiredFloat(c *gin.Context, name string) (float64, error) {
	s := c.Query(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s parameter is required", domain.ErrFormat, name)
	}
	v, err := parseFinite(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrFormat, name, s)
	}
	return v, nil
}

// parseFinite is strconv.ParseFloat without the "NaN" and "Inf" spellings.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func stationError(i int, err error) error {
	return fmt.Errorf("stations[%d]: %w", i, err)
}

func baseError(i int, err error) error {
	return fmt.Errorf("base[%d]: %w", i, err)
}
