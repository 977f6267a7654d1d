package domain

import (
	"fmt"
	"strings"
)

// ResidualMode selects what an IGRF correction reports beyond the total-field residual.
type ResidualMode string

// Residual modes.
const (
	ResidualTotal      ResidualMode = "total"      // observed - F
	ResidualComponents ResidualMode = "components" // observed - F plus X/Y/Z and their SV
)

// ParseResidualMode parses a mode name; empty selects ResidualTotal.
func ParseResidualMode(s string) (ResidualMode, error) {
	switch ResidualMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResidualTotal:
		return ResidualTotal, nil
	case ResidualComponents:
		return ResidualComponents, nil
	}
	return "", fmt.Errorf("%w: unknown residual mode %q (want %q or %q)", ErrFormat, s, ResidualTotal, ResidualComponents)
}

// IGRFResult is the main-field correction of one station reading.
type IGRFResult struct {
	Station     StationRecord
	DecimalYear float64
	Field       FieldResult
	Residual    float64 // Station.Field - Field.Elements.F.
}

// NewIGRFResult pairs a reading with the model field at its date.
func NewIGRFResult(s StationRecord, year float64, field FieldResult) IGRFResult {
	return IGRFResult{
		Station:     s,
		DecimalYear: year,
		Field:       field,
		Residual:    s.Field - field.Elements.F,
	}
}
