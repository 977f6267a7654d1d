// Package app wires configuration into stores and use cases for the server and the CLI.
package app

import (
	"errors"
	"log/slog"

	"go.ngs.io/magsurvey/internal/adapter/geoid"
	"go.ngs.io/magsurvey/internal/adapter/store/elevation"
	"go.ngs.io/magsurvey/internal/adapter/store/shc"
	"go.ngs.io/magsurvey/internal/config"
	"go.ngs.io/magsurvey/internal/observability"
	"go.ngs.io/magsurvey/internal/usecase"
)

// App holds the stores and use cases built from one configuration.
type App struct {
	Coefficients *shc.Store
	Elevation    *elevation.LocalStore // Nil when ELEVATION_GEBCO_PATH is unset.
	Geoid        *geoid.Store          // Nil when GEOID_EGM2008_PATH is unset.
	IGRF         *usecase.IGRFCorrection
	Diurnal      *usecase.DiurnalCorrection
}

// New builds the application graph. Files are opened lazily on first use.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *App {
	a := &App{Coefficients: shc.NewStore(cfg.CoeffsPath, logger)}

	if cfg.GeoidPath != "" {
		logger.Info("geoid store enabled", "path", cfg.GeoidPath)
		a.Geoid = geoid.NewStore(cfg.GeoidPath)
	}

	var elev elevation.Store
	if cfg.GEBCOPath != "" {
		logger.Info("elevation store enabled", "path", cfg.GEBCOPath, "geoid", a.Geoid != nil)
		a.Elevation = elevation.NewLocalStore(cfg.GEBCOPath, a.Geoid, logger)
		elev = a.Elevation
	} else {
		logger.Info("elevation store disabled, altitude defaults to 0 km")
	}

	a.IGRF = usecase.NewIGRFCorrection(a.Coefficients, elev, metrics, logger, cfg.MaxStations)
	a.Diurnal = usecase.NewDiurnalCorrection(metrics, logger, cfg.MaxStations)
	return a
}

// Close releases grid files held open by the stores.
func (a *App) Close() error {
	var errs []error
	if a.Elevation != nil {
		errs = append(errs, a.Elevation.Close())
	}
	if a.Geoid != nil {
		errs = append(errs, a.Geoid.Close())
	}
	return errors.Join(errs...)
}
