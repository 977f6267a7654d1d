package domain

import (
	"fmt"
	"strings"
	"time"
)

// Canonical layouts for normalized survey dates and times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Accepted station/base-station date layouts, tried in order. Ambiguous day/month inputs
// resolve to the first matching layout (day first).
var surveyDateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"02012006",
	"2006-1-2",
	"2006/1/2",
	"1-2-2006",
	"1/2/2006",
	"2006.1.2",
}

var surveyTimeLayouts = []string{
	"15:04:05",
	"3:04:05 PM",
	"150405",
	"3:04 PM",
	"3:04:05",
}

// Layouts accepted when converting a date to a decimal year.
var decimalDateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006/1/2",
	"2006-1-2",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseFirst(value string, layouts []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseSurveyDate parses a date in any accepted survey layout.
func ParseSurveyDate(value string) (time.Time, error) {
	t, ok := parseFirst(value, surveyDateLayouts)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: invalid date format: %q", ErrFormat, value)
	}
	return t, nil
}

// CanonicalDate normalizes a date to YYYY-MM-DD.
func CanonicalDate(value string) (string, error) {
	t, err := ParseSurveyDate(value)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// CanonicalTime normalizes a time of day to HH:MM:SS.
func CanonicalTime(value string) (string, error) {
	t, ok := parseFirst(value, surveyTimeLayouts)
	if !ok {
		return "", fmt.Errorf("%w: invalid time format: %q", ErrFormat, value)
	}
	return t.Format(TimeLayout), nil
}

// ParseTimestamp combines a survey date and time of day into a UTC timestamp.
func ParseTimestamp(date, clock string) (time.Time, error) {
	d, err := ParseSurveyDate(date)
	if err != nil {
		return time.Time{}, err
	}
	tod, ok := parseFirst(clock, surveyTimeLayouts)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: invalid time format: %q", ErrFormat, clock)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
}

// DecimalYear converts a date string to year + (day_of_year-1)/days_in_year.
func DecimalYear(value string) (float64, error) {
	t, ok := parseFirst(value, decimalDateLayouts)
	if !ok {
		return 0, fmt.Errorf("%w: date format not recognized: %q", ErrFormat, value)
	}
	return DecimalYearOf(t), nil
}

// DecimalYearOf converts the calendar date of t (time of day ignored).
func DecimalYearOf(t time.Time) float64 {
	year := t.Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	daysInYear := next.Sub(start).Hours() / 24
	return float64(year) + float64(t.YearDay()-1)/daysInYear
}
