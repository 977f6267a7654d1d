// Package csv reads survey tables and writes correction results as CSV.
package csv

import (
	"fmt"
	"strings"

	"go.ngs.io/magsurvey/internal/domain"
)

// Output column prefixes for station and base-station source columns.
const (
	StationPrefix = "sta_"
	BasePrefix    = "base_"
)

// StationColumns names the source columns of a station table.
type StationColumns struct {
	Date      string
	Time      string
	Latitude  string
	Longitude string
	Field     string
}

// BaseColumns names the source columns of a base-station table.
type BaseColumns struct {
	Date  string
	Time  string
	Field string
}

// DefaultStationColumns is used when no column list is given.
//
//nolint:gochecknoglobals // read-only default
var DefaultStationColumns = StationColumns{Date: "date", Time: "time", Latitude: "latitude", Longitude: "longitude", Field: "field"}

// DefaultBaseColumns is used when no column list is given.
//
//nolint:gochecknoglobals // read-only default
var DefaultBaseColumns = BaseColumns{Date: "date", Time: "time", Field: "field"}

// ParseStationColumns parses "date,time,latitude,longitude,field" style column lists.
func ParseStationColumns(list string) (StationColumns, error) {
	names, err := splitColumns(list, 5, "date,time,latitude,longitude,field")
	if err != nil {
		return StationColumns{}, err
	}
	return StationColumns{Date: names[0], Time: names[1], Latitude: names[2], Longitude: names[3], Field: names[4]}, nil
}

// ParseBaseColumns parses "date,time,field" style column lists.
func ParseBaseColumns(list string) (BaseColumns, error) {
	names, err := splitColumns(list, 3, "date,time,field")
	if err != nil {
		return BaseColumns{}, err
	}
	return BaseColumns{Date: names[0], Time: names[1], Field: names[2]}, nil
}

func (c StationColumns) names() []string {
	return []string{c.Date, c.Time, c.Latitude, c.Longitude, c.Field}
}

func (c BaseColumns) names() []string {
	return []string{c.Date, c.Time, c.Field}
}

func splitColumns(list string, want int, order string) ([]string, error) {
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	if len(names) != want {
		return nil, fmt.Errorf("%w: expected %d column names (%s), got %d in %q",
			domain.ErrFormat, want, order, len(names), list)
	}
	return names, nil
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return out
}
