// Command magsurvey runs survey corrections on CSV files and writes the results under
// OUTPUT_DIR/<project_name>/.
//
// Usage:
//
//	magsurvey diurnal-variation --project_name cerritos \
//	  --stations_file stations.csv --stations_cols date,time,lat,lon,field \
//	  --base_station_file base.csv --base_station_cols date,time,field
//
//	magsurvey calculate-igrf --project_name cerritos \
//	  --stations_file stations.csv --stations_cols date,time,lat,lon,field \
//	  [--altitude 2.1] [--date 2021-03-05] [--residual_mode components]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.ngs.io/magsurvey/internal/adapter/store/csv"
	"go.ngs.io/magsurvey/internal/app"
	"go.ngs.io/magsurvey/internal/config"
	"go.ngs.io/magsurvey/internal/domain"
	"go.ngs.io/magsurvey/internal/observability"
	"go.ngs.io/magsurvey/internal/usecase"
)

const version = "0.1.0"

var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "magsurvey: %v\n", err)
		os.Exit(1)
	}
}

// arg is one parsed command-line value, kept in declaration order for the banner.
type arg struct {
	name  string
	value *string
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return errUsage
	}

	switch args[0] {
	case "diurnal-variation":
		return runDiurnal(ctx, args[1:], stdout)
	case "calculate-igrf":
		return runIGRF(ctx, args[1:], stdout)
	case "-version", "--version", "version":
		fmt.Fprintf(stdout, "magsurvey version %s\n", version)
		return nil
	case "-help", "--help", "-h", "help":
		printUsage(stdout)
		return nil
	}
	printUsage(stdout)
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func runDiurnal(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("diurnal-variation", flag.ContinueOnError)
	fs.SetOutput(stdout)
	flags := []arg{
		{"project_name", fs.String("project_name", "", "Project name used for the output folder (required)")},
		{"stations_file", fs.String("stations_file", "", "Stations CSV file, optionally .gz (required)")},
		{"stations_cols", fs.String("stations_cols", "", "Stations columns in order date,time,latitude,longitude,field (default: date,time,latitude,longitude,field)")},
		{"base_station_file", fs.String("base_station_file", "", "Base station CSV file, optionally .gz (required)")},
		{"base_station_cols", fs.String("base_station_cols", "", "Base station columns in order date,time,field (default: date,time,field)")},
	}
	if err := parse(fs, args, []arg{flags[0], flags[1], flags[3]}); err != nil {
		return err
	}
	project, stationsFile, stationsCols, baseFile, baseCols :=
		*flags[0].value, *flags[1].value, *flags[2].value, *flags[3].value, *flags[4].value

	env, err := setup(stdout, fs.Name(), flags)
	if err != nil {
		return err
	}
	defer env.close()

	sc, err := stationColumns(stationsCols)
	if err != nil {
		return err
	}
	bc := csv.DefaultBaseColumns
	if baseCols != "" {
		if bc, err = csv.ParseBaseColumns(baseCols); err != nil {
			return err
		}
	}
	stations, err := csv.ReadStations(stationsFile, sc)
	if err != nil {
		return err
	}
	base, err := csv.ReadBaseStations(baseFile, bc)
	if err != nil {
		return err
	}
	env.logger.Info("input loaded", "stations", len(stations), "base_readings", len(base))

	resp, err := env.app.Diurnal.Execute(ctx, usecase.DiurnalRequest{Stations: stations, Base: base})
	if err != nil {
		return err
	}
	return env.save(stdout, project, csv.DiurnalTable(resp.Matches, sc, bc))
}

func runIGRF(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("calculate-igrf", flag.ContinueOnError)
	fs.SetOutput(stdout)
	flags := []arg{
		{"project_name", fs.String("project_name", "", "Project name used for the output folder (required)")},
		{"stations_file", fs.String("stations_file", "", "Stations CSV file, optionally .gz (required)")},
		{"stations_cols", fs.String("stations_cols", "", "Stations columns in order date,time,latitude,longitude,field (default: date,time,latitude,longitude,field)")},
		{"altitude", fs.String("altitude", "", "Survey altitude in km above the ellipsoid (default: elevation grid, else 0)")},
		{"date", fs.String("date", "", "Survey date overriding every row, e.g. 2021-03-05")},
		{"residual_mode", fs.String("residual_mode", "total", "total or components")},
	}
	if err := parse(fs, args, flags[:2]); err != nil {
		return err
	}
	project, stationsFile, stationsCols := *flags[0].value, *flags[1].value, *flags[2].value
	altitude, date, residualMode := *flags[3].value, *flags[4].value, *flags[5].value

	req := usecase.IGRFRequest{SurveyDate: date}
	if altitude != "" {
		km, err := strconv.ParseFloat(altitude, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid --altitude %q", domain.ErrFormat, altitude)
		}
		req.AltitudeKm = &km
	}
	mode, err := domain.ParseResidualMode(residualMode)
	if err != nil {
		return err
	}
	req.ResidualMode = mode

	env, err := setup(stdout, fs.Name(), flags)
	if err != nil {
		return err
	}
	defer env.close()

	sc, err := stationColumns(stationsCols)
	if err != nil {
		return err
	}
	if req.Stations, err = csv.ReadStations(stationsFile, sc); err != nil {
		return err
	}
	env.logger.Info("input loaded", "stations", len(req.Stations))

	resp, err := env.app.IGRF.Execute(ctx, req)
	if err != nil {
		return err
	}
	for _, w := range resp.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}
	return env.save(stdout, project, csv.IGRFTable(resp.Results, sc, resp.ResidualMode))
}

// parse parses flags and checks that every required flag was given.
func parse(fs *flag.FlagSet, args []string, required []arg) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	var missing []string
	for _, a := range required {
		if strings.TrimSpace(*a.value) == "" {
			missing = append(missing, "--"+a.name)
		}
	}
	if len(missing) > 0 {
		fs.Usage()
		return fmt.Errorf("%w: missing required flags %s", errUsage, strings.Join(missing, ", "))
	}
	return nil
}

func stationColumns(list string) (csv.StationColumns, error) {
	if list == "" {
		return csv.DefaultStationColumns, nil
	}
	return csv.ParseStationColumns(list)
}

type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	app    *app.App
	writer *csv.Writer
}

func setup(stdout io.Writer, command string, flags []arg) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg.Level(), cfg.LogFormat)

	printBanner(stdout, command, flags)
	logger.Info("command selected", "command", command)

	return &environment{
		cfg:    cfg,
		logger: logger,
		app:    app.New(cfg, logger, nil),
		writer: csv.NewWriter(cfg.OutputDir, nil),
	}, nil
}

func (e *environment) save(stdout io.Writer, project string, table csv.Table) error {
	path, err := e.writer.Write(project, table)
	if err != nil {
		return err
	}
	e.logger.Info("results saved", "path", path, "rows", len(table.Rows))
	fmt.Fprintf(stdout, "results saved to %s\n", path)
	return nil
}

func (e *environment) close() {
	if err := e.app.Close(); err != nil {
		e.logger.Error("store close error", "error", err)
	}
}

func printBanner(w io.Writer, command string, flags []arg) {
	rule := strings.Repeat("#", 59)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "######################## MAGSURVEY ########################")
	fmt.Fprintf(w, "##%s##\n", center(fmt.Sprintf("magsurvey v%s", version), 55))
	fmt.Fprintf(w, "##%s##\n", center("geomagnetic survey corrections", 55))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "command: %s\n", command)
	for _, a := range flags {
		fmt.Fprintf(w, "%s: %s\n", a.name, *a.value)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "magsurvey v%s: geomagnetic survey corrections\n\n", version)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  magsurvey <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMMANDS:")
	fmt.Fprintln(w, "  diurnal-variation   Remove the base-station daily variation from survey readings")
	fmt.Fprintln(w, "  calculate-igrf      Remove the IGRF main field from survey readings")
	fmt.Fprintln(w, "  version             Print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Get help with: magsurvey <command> --help")
}
