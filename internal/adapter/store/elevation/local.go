// Package elevation provides terrain elevation lookups from gridded NetCDF files.
package elevation

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.ngs.io/magsurvey/internal/adapter/geoid"
	"go.ngs.io/magsurvey/internal/adapter/interp"
	"go.ngs.io/magsurvey/internal/adapter/netcdfgrid"
)

// ErrNotConfigured is returned when no elevation grid path is set.
var ErrNotConfigured = errors.New("elevation grid not configured")

// Store returns surface heights for survey positions.
type Store interface {
	// Elevation returns the height above the geoid in meters at a location.
	Elevation(lat, lon float64) (float64, error)

	// EllipsoidalHeight returns the height above the WGS-84 ellipsoid in meters.
	EllipsoidalHeight(lat, lon float64) (float64, error)

	// Close releases any resources held by the store.
	Close() error
}

// margin is the half-width in degrees of the grid subset kept in memory.
const margin = 2.0

//nolint:gochecknoglobals // variable names used by GEBCO releases
var gebcoVars = netcdfgrid.Variables{
	Lat:  []string{"lat"},
	Lon:  []string{"lon"},
	Data: []string{"elevation"},
}

// LocalStore reads a GEBCO-style elevation grid from a local (or FUSE-mounted) NetCDF
// file. Only a window around the last query is held in memory; queries outside it
// reload the window.
type LocalStore struct {
	gebcoPath  string
	geoidStore *geoid.Store
	logger     *slog.Logger

	grid *interp.Grid2D
	mu   sync.Mutex
}

// NewLocalStore creates an elevation store. geoidStore may be nil, in which case
// EllipsoidalHeight equals Elevation.
func NewLocalStore(gebcoPath string, geoidStore *geoid.Store, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{
		gebcoPath:  gebcoPath,
		geoidStore: geoidStore,
		logger:     logger,
	}
}

// Elevation returns the GEBCO height (negative below sea level) in meters.
func (s *LocalStore) Elevation(lat, lon float64) (float64, error) {
	if s.gebcoPath == "" {
		return 0, ErrNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !netcdfgrid.Covers(s.grid, lat, lon) {
		if err := s.loadGrid(lat, lon); err != nil {
			return 0, err
		}
	}

	h, err := netcdfgrid.Interpolate(s.grid, lat, lon)
	if err != nil {
		return 0, fmt.Errorf("failed to interpolate elevation: %w", err)
	}
	return h, nil
}

// EllipsoidalHeight converts the grid's orthometric height H to ellipsoidal height
// h = H + N using the geoid store. A failed geoid lookup falls back to H with a warning.
func (s *LocalStore) EllipsoidalHeight(lat, lon float64) (float64, error) {
	h, err := s.Elevation(lat, lon)
	if err != nil {
		return 0, err
	}
	if s.geoidStore == nil {
		return h, nil
	}

	n, err := s.geoidStore.Height(lat, lon)
	if err != nil {
		s.logger.Warn("geoid correction failed, using orthometric height",
			"lat", lat, "lon", lon, "error", err)
		return h, nil
	}
	return h + n, nil
}

func (s *LocalStore) loadGrid(lat, lon float64) error {
	grid, err := netcdfgrid.LoadSubset(s.gebcoPath, gebcoVars, lat, lon, margin)
	if err != nil {
		return fmt.Errorf("failed to load GEBCO grid: %w", err)
	}
	s.grid = grid
	s.logger.Debug("loaded elevation grid",
		"path", s.gebcoPath,
		"lat_min", grid.Y[0], "lat_max", grid.Y[len(grid.Y)-1],
		"lon_min", grid.X[0], "lon_max", grid.X[len(grid.X)-1])
	return nil
}

// Close releases resources (no-op for local store).
func (s *LocalStore) Close() error {
	return nil
}
