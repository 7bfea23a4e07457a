package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, gauges, and histograms for one
// report run. They live on a private registry so repeated runs in tests
// never trip duplicate registration.
type Metrics struct {
	RecordsLoaded   prometheus.Counter
	DateParseErrors prometheus.Counter
	RecordsRetained *prometheus.CounterVec // label: analysis={health,economic}

	SignificantCategories *prometheus.GaugeVec     // labels: analysis, metric
	AnalysisDuration      *prometheus.HistogramVec // label: analysis
	ReportsWritten        prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "records_loaded_total",
			Help:      "Total rows read from the storm-events dataset.",
		}),
		DateParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "date_parse_errors_total",
			Help:      "Rows whose begin date could not be parsed (excluded by the window filter).",
		}),
		RecordsRetained: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "records_retained_total",
			Help:      "Rows surviving the date-window and nonzero-impact filter, per analysis.",
		}, []string{"analysis"}),
		SignificantCategories: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "storm_report",
			Name:      "significant_categories",
			Help:      "Canonical categories ranked per analysis and metric.",
		}, []string{"analysis", "metric"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_report",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of one filter-aggregate-threshold-relabel-rank sequence.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"analysis"}),
		ReportsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "reports_written_total",
			Help:      "Chart-data reports written for the renderer.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RecordsLoaded,
		m.DateParseErrors,
		m.RecordsRetained,
		m.SignificantCategories,
		m.AnalysisDuration,
		m.ReportsWritten,
	)

	return m
}

// Registry exposes the private registry, for the /metrics debug endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// NewMetricsForTesting is an alias kept so tests read like the production
// wiring; the private registry already makes NewMetrics safe to call per test.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}
