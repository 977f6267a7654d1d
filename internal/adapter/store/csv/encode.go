package csv

import (
	"strconv"

	"go.ngs.io/magsurvey/internal/domain"
)

// Computed columns of the diurnal correction.
//
//nolint:gochecknoglobals // read-only column names
var diurnalColumns = []string{"daily_mean", "diurnal_var", "diurnal_var_corr"}

// Computed columns of the IGRF correction.
//
//nolint:gochecknoglobals // read-only column names
var (
	igrfColumns = []string{
		"decimal_year",
		"igrf_d", "igrf_i", "igrf_h", "igrf_f",
		"igrf_d_sv", "igrf_i_sv", "igrf_h_sv", "igrf_f_sv",
		"igrf_residual",
	}
	igrfComponentColumns = []string{
		"igrf_x", "igrf_y", "igrf_z",
		"igrf_x_sv", "igrf_y_sv", "igrf_z_sv",
	}
)

// DiurnalTable lays out diurnal corrections as station columns, matched base columns and
// the computed correction.
func DiurnalTable(matches []domain.DiurnalMatch, sc StationColumns, bc BaseColumns) Table {
	header := append(prefixed(StationPrefix, sc.names()), prefixed(BasePrefix, bc.names())...)
	header = append(header, diurnalColumns...)

	rows := make([][]string, len(matches))
	for i, m := range matches {
		row := stationValues(m.Station)
		row = append(row, m.Base.Date(), m.Base.Clock(), num(m.Base.Field))
		row = append(row, num(m.DailyMean), num(m.DiurnalVar), num(m.DiurnalCorrected))
		rows[i] = row
	}
	return Table{Header: header, Rows: rows}
}

// IGRFTable lays out IGRF corrections. ResidualComponents adds the X/Y/Z columns.
func IGRFTable(results []domain.IGRFResult, sc StationColumns, mode domain.ResidualMode) Table {
	header := append(prefixed(StationPrefix, sc.names()), igrfColumns...)
	if mode == domain.ResidualComponents {
		header = append(header, igrfComponentColumns...)
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		e, rate := r.Field.Elements, r.Field.Rates
		row := stationValues(r.Station)
		row = append(row,
			num(r.DecimalYear),
			num(e.D), num(e.I), num(e.H), num(e.F),
			num(rate.Ddot), num(rate.Idot), num(rate.Hdot), num(rate.Fdot),
			num(r.Residual),
		)
		if mode == domain.ResidualComponents {
			main, sv := r.Field.Main, r.Field.SV
			row = append(row, num(main.X), num(main.Y), num(main.Z), num(sv.X), num(sv.Y), num(sv.Z))
		}
		rows[i] = row
	}
	return Table{Header: header, Rows: rows}
}

func stationValues(s domain.StationRecord) []string {
	return []string{s.Date(), s.Clock(), num(s.Latitude), num(s.Longitude), num(s.Field)}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
