// Package geoid provides access to EGM2008 geoid undulations for height conversions.
package geoid

import (
	"fmt"
	"sync"

	"go.ngs.io/magsurvey/internal/adapter/interp"
	"go.ngs.io/magsurvey/internal/adapter/netcdfgrid"
)

const margin = 2.0 // Degrees.

//nolint:gochecknoglobals // variable names used by EGM2008 grid distributions
var egmVars = netcdfgrid.Variables{
	Lat:  []string{"lat"},
	Lon:  []string{"lon"},
	Data: []string{"geoid", "geoid_height", "N", "height"},
}

// Store provides geoid height lookups.
type Store struct {
	geoidPath string
	grid      *interp.Grid2D
	mu        sync.Mutex
}

// NewStore creates a new geoid store.
func NewStore(geoidPath string) *Store {
	return &Store{
		geoidPath: geoidPath,
	}
}

// Height returns the EGM2008 geoid height N in meters: the separation between the WGS-84
// ellipsoid and the geoid, positive when the geoid is above the ellipsoid.
//
// Ellipsoidal height h relates to orthometric height H by
//
//	h = H + N
func (s *Store) Height(lat, lon float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !netcdfgrid.Covers(s.grid, lat, lon) {
		grid, err := netcdfgrid.LoadSubset(s.geoidPath, egmVars, lat, lon, margin)
		if err != nil {
			return 0, fmt.Errorf("failed to load geoid grid: %w", err)
		}
		s.grid = grid
	}

	n, err := netcdfgrid.Interpolate(s.grid, lat, lon)
	if err != nil {
		return 0, fmt.Errorf("failed to interpolate geoid height: %w", err)
	}
	return n, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
