package shc

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/magsurvey/internal/adapter/store"
	"go.ngs.io/magsurvey/internal/domain"
)

const dipole = `# axial dipole, two knots
1 1 2 2 20 2000.0 2020.0
2000.0 2020.0
1 0 -30000.0 -29000.0
1 1 0.0 0.0
1 -1 0.0 0.0
`

var _ store.CoefficientLoader = (*Store)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_LoadsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dipole.shc")
	require.NoError(t, os.WriteFile(path, []byte(dipole), 0o600))

	s := NewStore(path, testLogger())
	assert.False(t, s.Loaded())

	first, err := s.Coefficients()
	require.NoError(t, err)
	assert.Equal(t, "dipole.shc", first.Name)
	assert.Equal(t, 1, first.Params.NMax)
	assert.True(t, s.Loaded())

	// Later calls return the cached set even if the file changes.
	require.NoError(t, os.Remove(path))
	second, err := s.Coefficients()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestStore_ConcurrentCallers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dipole.shc")
	require.NoError(t, os.WriteFile(path, []byte(dipole), 0o600))
	s := NewStore(path, testLogger())

	var wg sync.WaitGroup
	sets := make([]*domain.CoefficientSet, 8)
	for i := range sets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sets[i], _ = s.Coefficients()
		}(i)
	}
	wg.Wait()

	for _, set := range sets {
		assert.Same(t, sets[0], set)
	}
}

func TestStore_MissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.shc"), testLogger())

	_, err := s.Coefficients()
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorContains(t, err, "IGRF_COEFFS_PATH")
	assert.ErrorContains(t, err, SourceURL)
	assert.False(t, s.Loaded())
}

func TestStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.shc")
	require.NoError(t, os.WriteFile(path, []byte("1 1 2 2 20 2000.0 2020.0\n2000.0 x\n"), 0o600))

	_, err := NewStore(path, testLogger()).Coefficients()
	assert.ErrorIs(t, err, domain.ErrFormat)
}
