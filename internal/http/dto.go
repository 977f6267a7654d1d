package http

import (
	"math"

	"go.ngs.io/magsurvey/internal/domain"
	"go.ngs.io/magsurvey/internal/usecase"
)

// StationInput is one survey reading in a request body.
type StationInput struct {
	Date      string   `json:"date"      binding:"required"`
	Time      string   `json:"time"      binding:"required"`
	Latitude  *float64 `json:"latitude"  binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Field     *float64 `json:"field"     binding:"required"`
}

// BaseInput is one base-station reading in a request body.
type BaseInput struct {
	Date  string   `json:"date"  binding:"required"`
	Time  string   `json:"time"  binding:"required"`
	Field *float64 `json:"field" binding:"required"`
}

// IGRFCorrectionRequest is the body of POST /v1/corrections/igrf.
type IGRFCorrectionRequest struct {
	Stations     []StationInput `json:"stations"      binding:"required,min=1,dive"`
	AltitudeKm   *float64       `json:"altitude_km"`
	Date         string         `json:"date"`
	ResidualMode string         `json:"residual_mode"`
}

// DiurnalCorrectionRequest is the body of POST /v1/corrections/diurnal.
type DiurnalCorrectionRequest struct {
	Stations []StationInput `json:"stations" binding:"required,min=1,dive"`
	Base     []BaseInput    `json:"base"     binding:"required,min=1,dive"`
}

// ModelResponse describes the loaded coefficient set.
type ModelResponse struct {
	Name      string    `json:"name"`
	NMin      int       `json:"nmin"`
	NMax      int       `json:"nmax"`
	StartYear float64   `json:"start_year"`
	EndYear   float64   `json:"end_year"`
	Knots     []float64 `json:"knots"`
}

// Vector is an X/Y/Z triple in the geodetic frame. Non-finite values encode as null.
type Vector struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// FieldResponse is the body of GET /v1/igrf/field.
type FieldResponse struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	AltitudeKm float64  `json:"altitude_km"`
	Year       float64  `json:"decimal_year"`
	EpochStart float64  `json:"epoch_start"`
	Main       Vector   `json:"main"`
	SV         Vector   `json:"sv"`
	D          *float64 `json:"d"`
	I          *float64 `json:"i"`
	H          *float64 `json:"h"`
	F          *float64 `json:"f"`
	DSV        *float64 `json:"d_sv"`
	ISV        *float64 `json:"i_sv"`
	HSV        *float64 `json:"h_sv"`
	FSV        *float64 `json:"f_sv"`
}

// IGRFRow is one corrected reading.
type IGRFRow struct {
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Field       float64  `json:"field"`
	DecimalYear float64  `json:"decimal_year"`
	D           *float64 `json:"igrf_d"`
	I           *float64 `json:"igrf_i"`
	H           *float64 `json:"igrf_h"`
	F           *float64 `json:"igrf_f"`
	DSV         *float64 `json:"igrf_d_sv"`
	ISV         *float64 `json:"igrf_i_sv"`
	HSV         *float64 `json:"igrf_h_sv"`
	FSV         *float64 `json:"igrf_f_sv"`
	Residual    *float64 `json:"igrf_residual"`
	Main        *Vector  `json:"igrf_xyz,omitempty"`
	SV          *Vector  `json:"igrf_xyz_sv,omitempty"`
}

// IGRFCorrectionResponse is the body returned by POST /v1/corrections/igrf.
type IGRFCorrectionResponse struct {
	RunID          string    `json:"run_id"`
	Model          string    `json:"model"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AltitudeKm     float64   `json:"altitude_km"`
	AltitudeSource string    `json:"altitude_source"`
	ResidualMode   string    `json:"residual_mode"`
	Warnings       []string  `json:"warnings"`
	Results        []IGRFRow `json:"results"`
}

// DiurnalRow is one corrected reading with its matched base reading.
type DiurnalRow struct {
	Date             string  `json:"date"`
	Time             string  `json:"time"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Field            float64 `json:"field"`
	BaseDate         string  `json:"base_date"`
	BaseTime         string  `json:"base_time"`
	BaseField        float64 `json:"base_field"`
	TimeDiffSeconds  float64 `json:"time_diff_seconds"`
	DailyMean        float64 `json:"daily_mean"`
	DiurnalVar       float64 `json:"diurnal_var"`
	DiurnalCorrected float64 `json:"diurnal_var_corr"`
}

// DiurnalCorrectionResponse is the body returned by POST /v1/corrections/diurnal.
type DiurnalCorrectionResponse struct {
	RunID              string       `json:"run_id"`
	MaxTimeDiffSeconds float64      `json:"max_time_diff_seconds"`
	Warnings           []string     `json:"warnings"`
	Results            []DiurnalRow `json:"results"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func vector(v domain.FieldVector) Vector {
	return Vector{X: finite(v.X), Y: finite(v.Y), Z: finite(v.Z)}
}

func toStations(in []StationInput) ([]domain.StationRecord, error) {
	out := make([]domain.StationRecord, len(in))
	for i, s := range in {
		rec, err := domain.NewStationRecord(s.Date, s.Time, *s.Latitude, *s.Longitude, *s.Field)
		if err != nil {
			return nil, stationError(i, err)
		}
		out[i] = rec
	}
	return out, nil
}

func toBase(in []BaseInput) ([]domain.BaseStationRecord, error) {
	out := make([]domain.BaseStationRecord, len(in))
	for i, b := range in {
		rec, err := domain.NewBaseStationRecord(b.Date, b.Time, *b.Field)
		if err != nil {
			return nil, baseError(i, err)
		}
		out[i] = rec
	}
	return out, nil
}

func fieldResponse(lat, lon, altKm float64, r domain.FieldResult) FieldResponse {
	return FieldResponse{
		Latitude:   lat,
		Longitude:  lon,
		AltitudeKm: altKm,
		Year:       r.Year,
		EpochStart: r.EpochStart,
		Main:       vector(r.Main),
		SV:         vector(r.SV),
		D:          finite(r.Elements.D),
		I:          finite(r.Elements.I),
		H:          finite(r.Elements.H),
		F:          finite(r.Elements.F),
		DSV:        finite(r.Rates.Ddot),
		ISV:        finite(r.Rates.Idot),
		HSV:        finite(r.Rates.Hdot),
		FSV:        finite(r.Rates.Fdot),
	}
}

func igrfResponse(resp *usecase.IGRFResponse) IGRFCorrectionResponse {
	rows := make([]IGRFRow, len(resp.Results))
	for i, r := range resp.Results {
		e, rate := r.Field.Elements, r.Field.Rates
		row := IGRFRow{
			Date:        r.Station.Date(),
			Time:        r.Station.Clock(),
			Latitude:    r.Station.Latitude,
			Longitude:   r.Station.Longitude,
			Field:       r.Station.Field,
			DecimalYear: r.DecimalYear,
			D:           finite(e.D),
			I:           finite(e.I),
			H:           finite(e.H),
			F:           finite(e.F),
			DSV:         finite(rate.Ddot),
			ISV:         finite(rate.Idot),
			HSV:         finite(rate.Hdot),
			FSV:         finite(rate.Fdot),
			Residual:    finite(r.Residual),
		}
		if resp.ResidualMode == domain.ResidualComponents {
			main, sv := vector(r.Field.Main), vector(r.Field.SV)
			row.Main, row.SV = &main, &sv
		}
		rows[i] = row
	}
	return IGRFCorrectionResponse{
		RunID:          resp.RunID,
		Model:          resp.Model,
		Latitude:       resp.Latitude,
		Longitude:      resp.Longitude,
		AltitudeKm:     resp.AltitudeKm,
		AltitudeSource: resp.AltitudeSource,
		ResidualMode:   string(resp.ResidualMode),
		Warnings:       nonNil(resp.Warnings),
		Results:        rows,
	}
}

func diurnalResponse(resp *usecase.DiurnalResponse) DiurnalCorrectionResponse {
	rows := make([]DiurnalRow, len(resp.Matches))
	for i, m := range resp.Matches {
		rows[i] = DiurnalRow{
			Date:             m.Station.Date(),
			Time:             m.Station.Clock(),
			Latitude:         m.Station.Latitude,
			Longitude:        m.Station.Longitude,
			Field:            m.Station.Field,
			BaseDate:         m.Base.Date(),
			BaseTime:         m.Base.Clock(),
			BaseField:        m.Base.Field,
			TimeDiffSeconds:  m.TimeDiff.Seconds(),
			DailyMean:        m.DailyMean,
			DiurnalVar:       m.DiurnalVar,
			DiurnalCorrected: m.DiurnalCorrected,
		}
	}
	return DiurnalCorrectionResponse{
		RunID:              resp.RunID,
		MaxTimeDiffSeconds: resp.MaxTimeDiff.Seconds(),
		Warnings:           nonNil(resp.Warnings),
		Results:            rows,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
