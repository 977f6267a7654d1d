// Package main provides the magsurvey HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/magsurvey/internal/app"
	"go.ngs.io/magsurvey/internal/config"
	httpHandler "go.ngs.io/magsurvey/internal/http"
	"go.ngs.io/magsurvey/internal/observability"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("magsurvey-server version %s\n", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Level(), cfg.LogFormat)
	metrics := observability.NewMetrics()
	gin.SetMode(gin.ReleaseMode)

	logger.Info("starting magsurvey server",
		"version", version,
		"port", cfg.Port,
		"coefficients", cfg.CoeffsPath,
		"max_stations", cfg.MaxStations,
	)

	a := app.New(cfg, logger, metrics)

	// Load the model up front so a bad path shows in the logs; requests still get a 503
	// until the file is readable.
	if coeffs, err := a.IGRF.Model(); err != nil {
		logger.Warn("coefficient file not available", "error", err)
	} else {
		logger.Info("model ready", "name", coeffs.Name, "nmax", coeffs.Params.NMax)
	}

	handler := httpHandler.NewHandler(a.IGRF, a.Diurnal, nil, logger)
	router := httpHandler.SetupRouter(handler, cfg.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Magsurvey Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  magsurvey-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES (a .env file is read when present):")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  IGRF_COEFFS_PATH        IGRF coefficient file (default: " + config.DefaultCoeffsPath + ")")
	fmt.Println("  OUTPUT_DIR              CSV output directory for the CLI (default: resources)")
	fmt.Println("  ELEVATION_GEBCO_PATH    GEBCO NetCDF file for survey altitude (optional)")
	fmt.Println("  GEOID_EGM2008_PATH      EGM2008 geoid NetCDF file (optional)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println("  LOG_FORMAT              json or text (default: json)")
	fmt.Println("  SHUTDOWN_TIMEOUT        Graceful shutdown timeout (default: 10s)")
	fmt.Println("  MAX_STATIONS            Maximum readings per request (default: 10000)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                   Health check")
	fmt.Println("  GET  /metrics                  Prometheus metrics")
	fmt.Println("  GET  /v1/model                 Loaded coefficient model")
	fmt.Println("  GET  /v1/igrf/field            Field at lat, lon, alt_km, date")
	fmt.Println("  POST /v1/corrections/igrf      IGRF residuals for station readings")
	fmt.Println("  POST /v1/corrections/diurnal   Diurnal correction against a base station")
	fmt.Println()
}
