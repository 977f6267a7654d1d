package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jonboulle/clockwork"

	"go.ngs.io/magsurvey/internal/domain"
)

// outputStampLayout is the timestamp embedded in output file names.
const outputStampLayout = "2006-01-02_150405"

//nolint:gochecknoglobals // compiled once
var outputName = regexp.MustCompile(`^.*_(\d{4}-\d{2}-\d{2}_\d{6})\.csv$`)

// Table is a header plus string rows, ready to be written.
type Table struct {
	Header []string
	Rows   [][]string
}

// Writer saves result tables under <dir>/<project>/<project>_<YYYY-MM-DD_HHMMSS>.csv.
type Writer struct {
	dir   string
	clock clockwork.Clock
}

// NewWriter creates a writer rooted at dir. A nil clock uses the real clock.
func NewWriter(dir string, clock clockwork.Clock) *Writer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Writer{dir: dir, clock: clock}
}

// Write saves the table for a project and returns the absolute path of the new file.
func (w *Writer) Write(project string, table Table) (string, error) {
	if project == "" || filepath.Base(project) != project {
		return "", fmt.Errorf("%w: invalid project name %q", domain.ErrFormat, project)
	}

	folder, err := filepath.Abs(filepath.Join(w.dir, project))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output folder: %w", err)
	}
	//nolint:gosec // G301: output folders are meant to be shared.
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	name := fmt.Sprintf("%s_%s.csv", project, w.clock.Now().Format(outputStampLayout))
	path := filepath.Join(folder, name)

	//nolint:gosec // G304: path is built from the configured output dir.
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(table.Header); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write rows: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// LatestOutput returns the name of the most recent output file in folder, judged by the
// timestamp in the file name.
func LatestOutput(folder string) (string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", fmt.Errorf("failed to read output folder: %w", err)
	}

	var (
		latest   string
		latestAt time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := outputName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		at, err := time.Parse(outputStampLayout, m[1])
		if err != nil {
			continue
		}
		if latest == "" || at.After(latestAt) {
			latest, latestAt = entry.Name(), at
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no output files found in %s: %w", folder, os.ErrNotExist)
	}
	return latest, nil
}
