package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"

	"go.ngs.io/magsurvey/internal/domain"
)

// ReadStations reads station readings from a CSV file (optionally .gz compressed).
func ReadStations(path string, cols StationColumns) ([]domain.StationRecord, error) {
	var out []domain.StationRecord
	err := readFile(path, cols.names(), func(line int, v []string) error {
		lat, err := parseFloat(v[2], cols.Latitude, line)
		if err != nil {
			return err
		}
		lon, err := parseFloat(v[3], cols.Longitude, line)
		if err != nil {
			return err
		}
		field, err := parseFloat(v[4], cols.Field, line)
		if err != nil {
			return err
		}
		rec, err := domain.NewStationRecord(v[0], v[1], lat, lon, field)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadBaseStations reads base-station readings from a CSV file (optionally .gz compressed).
func ReadBaseStations(path string, cols BaseColumns) ([]domain.BaseStationRecord, error) {
	var out []domain.BaseStationRecord
	err := readFile(path, cols.names(), func(line int, v []string) error {
		field, err := parseFloat(v[2], cols.Field, line)
		if err != nil {
			return err
		}
		rec, err := domain.NewBaseStationRecord(v[0], v[1], field)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readFile(path string, columns []string, row func(line int, values []string) error) error {
	//nolint:gosec // G304: path is an operator-supplied input file.
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := pgzip.NewReaderN(file, 256*1024, runtime.NumCPU())
		if err != nil {
			return fmt.Errorf("%w: %s is not valid gzip: %v", domain.ErrFormat, path, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return readTable(r, path, columns, row)
}

// readTable selects the named columns from a CSV stream and passes each data row to row.
func readTable(r io.Reader, name string, columns []string, row func(line int, values []string) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%w: failed to read CSV header of %s: %v", domain.ErrFormat, name, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	positions := make([]int, len(columns))
	var missing []string
	for i, c := range columns {
		pos, ok := index[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: columns not found in %s: %v", domain.ErrFormat, name, missing)
	}

	values := make([]string, len(columns))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: failed to read CSV record: %v", domain.ErrFormat, err)
		}
		line, _ := reader.FieldPos(0)
		for i, pos := range positions {
			values[i] = strings.TrimSpace(record[pos])
		}
		if err := row(line, values); err != nil {
			return err
		}
	}
}

func parseFloat(s, column string, line int) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: invalid %s %q", domain.ErrFormat, line, column, s)
	}
	return v, nil
}
