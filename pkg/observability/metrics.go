package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the protoc driver
type Metrics struct {
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	UnpackedFilesTotal prometheus.Counter
	GeneratedFiles     prometheus.Gauge

	CompilerExitsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on the given registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gearbox_generations_total",
				Help: "Total number of generation runs",
			},
			[]string{"result"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gearbox_generation_duration_seconds",
				Help:    "Generation run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gearbox_cache_hits_total",
				Help: "Generation runs skipped because the input fingerprint was unchanged",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gearbox_cache_misses_total",
				Help: "Generation runs that invoked the schema compiler",
			},
		),
		UnpackedFilesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gearbox_unpacked_files_total",
				Help: "Proto files extracted from dependency archives",
			},
		),
		GeneratedFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gearbox_generated_files",
				Help: "Generated files produced by the last successful run",
			},
		),
		CompilerExitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gearbox_compiler_exits_total",
				Help: "Schema compiler exits by exit code",
			},
			[]string{"code"},
		),
	}

	registry.MustRegister(
		m.GenerationsTotal,
		m.GenerationDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.UnpackedFilesTotal,
		m.GeneratedFiles,
		m.CompilerExitsTotal,
	)

	return m
}
