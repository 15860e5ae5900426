// Package metrics records per-run pipeline counters for the Prometheus textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors of one analysis run.
type Metrics struct {
	registry *prometheus.Registry

	RecordsLoaded  *prometheus.CounterVec
	SourcesAbsent  *prometheus.CounterVec
	JoinColumns    *prometheus.GaugeVec
	Findings       *prometheus.CounterVec
	RankedEntries  prometheus.Gauge
	StageDuration  *prometheus.HistogramVec
	LastRunSuccess prometheus.Gauge
}

// New registers the triage collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Source metrics
		RecordsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telhawk_triage_records_loaded_total",
				Help: "Total number of raw records loaded per source",
			},
			[]string{"source"},
		),

		SourcesAbsent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telhawk_triage_sources_absent_total",
				Help: "Optional sources that were not available",
			},
			[]string{"source"},
		),

		// Normalization metrics
		JoinColumns: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "telhawk_triage_join_columns",
				Help: "Number of sequence-valued columns collapsed during normalization",
			},
			[]string{"source"},
		),

		// Detection metrics
		Findings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telhawk_triage_findings_total",
				Help: "Suspicious entries emitted per heuristic label",
			},
			[]string{"label"},
		),

		RankedEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "telhawk_triage_ranked_entries",
				Help: "Entries in the final cross-source ranking",
			},
		),

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telhawk_triage_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		LastRunSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "telhawk_triage_last_run_success",
				Help: "1 if the last analysis run completed, 0 otherwise",
			},
		),
	}
}

// ObserveStage records how long a stage took since start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Gatherer exposes the registry, e.g. for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all collectors in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
