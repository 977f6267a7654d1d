package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// StationRecord is one mobile survey reading.
type StationRecord struct {
	Timestamp time.Time
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	Field     float64
}

// BaseStationRecord is one fixed base-station reading.
type BaseStationRecord struct {
	Timestamp time.Time
	Field     float64
}

// Date returns the canonical calendar date of the reading.
func (r StationRecord) Date() string { return r.Timestamp.Format(DateLayout) }

// Clock returns the canonical time of day of the reading.
func (r StationRecord) Clock() string { return r.Timestamp.Format(TimeLayout) }

// Date returns the canonical calendar date of the reading.
func (r BaseStationRecord) Date() string { return r.Timestamp.Format(DateLayout) }

// Clock returns the canonical time of day of the reading.
func (r BaseStationRecord) Clock() string { return r.Timestamp.Format(TimeLayout) }

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks latitude and longitude bounds.
func (r StationRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s out of bounds: %v", strings.ToLower(fe.Field()), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrDomain, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// NewStationRecord builds a validated station record from raw date and time strings.
func NewStationRecord(date, clock string, lat, lon, field float64) (StationRecord, error) {
	ts, err := ParseTimestamp(date, clock)
	if err != nil {
		return StationRecord{}, err
	}
	rec := StationRecord{Timestamp: ts, Latitude: lat, Longitude: lon, Field: field}
	if err := rec.Validate(); err != nil {
		return StationRecord{}, err
	}
	return rec, nil
}

// NewBaseStationRecord builds a base-station record from raw date and time strings.
func NewBaseStationRecord(date, clock string, field float64) (BaseStationRecord, error) {
	ts, err := ParseTimestamp(date, clock)
	if err != nil {
		return BaseStationRecord{}, err
	}
	return BaseStationRecord{Timestamp: ts, Field: field}, nil
}

// MeanPosition returns the arithmetic mean latitude and longitude of the stations.
func MeanPosition(stations []StationRecord) (lat, lon float64) {
	if len(stations) == 0 {
		return 0, 0
	}
	for _, s := range stations {
		lat += s.Latitude
		lon += s.Longitude
	}
	n := float64(len(stations))
	return lat / n, lon / n
}
