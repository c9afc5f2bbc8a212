// Package metrics records per-tamper generation statistics in a private
// Prometheus registry and exports them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/0x6d61/tampergen/internal/tamper"
)

// Collector implements variant.Observer.
type Collector struct {
	registry *prometheus.Registry

	appliedTotal  *prometheus.CounterVec
	skippedTotal  *prometheus.CounterVec
	outputBytes   *prometheus.HistogramVec
	growthRatio   *prometheus.GaugeVec
	runDuration   prometheus.Gauge
	lastRunUnix   prometheus.Gauge
	variantsTotal prometheus.Counter
}

// New creates a Collector with its own registry (the default registry is
// left untouched).
func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.appliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tampergen_tamper_applied_total",
			Help: "Number of successful tamper applications",
		},
		[]string{"tamper", "category"},
	)
	c.skippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tampergen_tamper_skipped_total",
			Help: "Number of tamper applications skipped after an error",
		},
		[]string{"tamper", "category"},
	)
	c.outputBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tampergen_variant_bytes",
			Help:    "Size of generated variants in bytes",
			Buckets: prometheus.ExponentialBuckets(16, 2, 8),
		},
		[]string{"category"},
	)
	c.growthRatio = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tampergen_tamper_growth_ratio",
			Help: "Output length divided by input length for the last application",
		},
		[]string{"tamper"},
	)
	c.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tampergen_run_duration_seconds",
		Help: "Wall-clock duration of the last generation run",
	})
	c.lastRunUnix = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tampergen_last_run_timestamp_seconds",
		Help: "Unix time the last generation run finished",
	})
	c.variantsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tampergen_variants_total",
		Help: "Number of variants emitted, baseline included",
	})

	c.registry.MustRegister(
		c.appliedTotal,
		c.skippedTotal,
		c.outputBytes,
		c.growthRatio,
		c.runDuration,
		c.lastRunUnix,
		c.variantsTotal,
	)
	return c
}

// Observe records one catalog entry.
func (c *Collector) Observe(name string, category tamper.Category, input, output string, err error) {
	if err != nil {
		c.skippedTotal.WithLabelValues(name, string(category)).Inc()
		return
	}
	c.appliedTotal.WithLabelValues(name, string(category)).Inc()
	c.outputBytes.WithLabelValues(string(category)).Observe(float64(len(output)))
	if len(input) > 0 {
		c.growthRatio.WithLabelValues(name).Set(float64(len(output)) / float64(len(input)))
	}
}

// ObserveRun records batch-level figures.
func (c *Collector) ObserveRun(d time.Duration, variants int, finished time.Time) {
	c.runDuration.Set(d.Seconds())
	c.variantsTotal.Add(float64(variants))
	c.lastRunUnix.Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("metrics: write textfile %q: %w", path, err)
	}
	return nil
}
