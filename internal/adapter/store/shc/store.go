// Package shc loads spherical-harmonic coefficient files (SHC layout) from disk.
package shc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.ngs.io/magsurvey/internal/domain"
)

// SourceURL is where the IAGA publishes the IGRF-13 coefficient file.
const SourceURL = "https://www.ngdc.noaa.gov/IAGA/vmod/coeffs/IGRF13.shc"

// Store lazily reads one coefficient file and caches the parsed set. The set is immutable
// and shared by all callers.
type Store struct {
	path   string
	logger *slog.Logger

	coeffs *domain.CoefficientSet
	mu     sync.Mutex
}

// NewStore creates a store for the coefficient file at path. Nothing is read until the
// first call to Coefficients.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the configured file path.
func (s *Store) Path() string {
	return s.path
}

// Coefficients returns the coefficient set, parsing the file on first use. A failed load
// is not cached, so a file that appears later is picked up by the next call.
func (s *Store) Coefficients() (*domain.CoefficientSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coeffs != nil {
		return s.coeffs, nil
	}

	//nolint:gosec // G304: path comes from configuration.
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening coefficient file: %v (set IGRF_COEFFS_PATH to a copy of %s)",
			domain.ErrConfiguration, err, SourceURL)
	}
	defer func() { _ = file.Close() }()

	coeffs, err := domain.ParseCoefficients(file, filepath.Base(s.path))
	if err != nil {
		return nil, err
	}

	s.logger.Info("coefficient file loaded",
		"path", s.path,
		"nmin", coeffs.Params.NMin,
		"nmax", coeffs.Params.NMax,
		"knots", len(coeffs.Times),
		"start_year", coeffs.Params.StartYear,
		"end_year", coeffs.Params.EndYear,
	)
	s.coeffs = coeffs
	return coeffs, nil
}

// Loaded reports whether the file has been parsed successfully.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coeffs != nil
}
