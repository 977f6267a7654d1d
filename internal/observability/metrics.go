package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Correction kinds used as the "kind" label.
const (
	KindIGRF    = "igrf"
	KindDiurnal = "diurnal"
	KindField   = "field"
)

// Outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for the correction engine.
type Metrics struct {
	CorrectionsTotal   *prometheus.CounterVec   // labels: kind, outcome
	StationsProcessed  *prometheus.CounterVec   // labels: kind
	CorrectionDuration *prometheus.HistogramVec // labels: kind
	ModelLoaded        prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.CorrectionsTotal,
		m.StationsProcessed,
		m.CorrectionDuration,
		m.ModelLoaded,
	)
	return m
}

// NewMetricsForTesting creates metrics without registering them, so tests can build as
// many instances as they need.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CorrectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magsurvey",
			Name:      "corrections_total",
			Help:      "Correction runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		StationsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magsurvey",
			Name:      "stations_processed_total",
			Help:      "Station readings corrected, by kind.",
		}, []string{"kind"}),
		CorrectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "magsurvey",
			Name:      "correction_duration_seconds",
			Help:      "Duration of a complete correction run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "magsurvey",
			Name:      "model_loaded",
			Help:      "1 once the coefficient file has been loaded, 0 otherwise.",
		}),
	}
}

// ObserveRun records the outcome, size and duration of one correction run.
func (m *Metrics) ObserveRun(kind string, stations int, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.CorrectionsTotal.WithLabelValues(kind, outcome).Inc()
	m.CorrectionDuration.WithLabelValues(kind).Observe(seconds)
	if err == nil {
		m.StationsProcessed.WithLabelValues(kind).Add(float64(stations))
	}
}
