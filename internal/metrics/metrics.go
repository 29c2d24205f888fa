// Package metrics provides Prometheus metrics for archive runs.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytget/course-archiver/internal/model"
)

const namespace = "course_archiver"

// Run results
const (
	RunResultOK       = "ok"
	RunResultFailures = "failures"
	RunResultError    = "error"
)

// Collector holds all Prometheus metrics for the archiver.
type Collector struct {
	registry *prometheus.Registry

	// Asset metrics
	AssetsTotal    *prometheus.CounterVec
	AssetBytes     *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	AssetsInFlight prometheus.Gauge

	// Run metrics
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
	LastRunAssets    *prometheus.GaugeVec

	mu       sync.Mutex
	inFlight map[string]bool
}

// New creates a collector on a fresh registry that also carries the Go and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry creates a collector registering its metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		inFlight: make(map[string]bool),

		AssetsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assets_total",
				Help:      "Total number of assets by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		AssetBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asset_bytes_total",
				Help:      "Total bytes written by fetched assets",
			},
			[]string{"kind"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Asset fetch duration in seconds",
				Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 300, 900, 1800, 3600},
			},
			[]string{"kind", "status"},
		),
		AssetsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "assets_in_flight",
				Help:      "Number of assets currently being fetched",
			},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of archive runs by result",
			},
			[]string{"result"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Archive run duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix timestamp of the last finished run",
			},
		),
		LastRunAssets: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_assets",
				Help:      "Assets of the last finished run by outcome",
			},
			[]string{"status"},
		),
	}
}

// ObserveAsset records an asset state change. It is meant to be registered as
// the archive update callback.
func (c *Collector) ObserveAsset(task *model.AssetTask) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if task.Status.IsActive() {
		if !c.inFlight[task.ID] {
			c.inFlight[task.ID] = true
			c.AssetsInFlight.Inc()
		}
		return
	}
	if !task.Status.IsFinished() {
		return
	}

	if c.inFlight[task.ID] {
		delete(c.inFlight, task.ID)
		c.AssetsInFlight.Dec()
	}

	kind, status := task.Kind.String(), task.Status.String()
	c.AssetsTotal.WithLabelValues(kind, status).Inc()
	if task.Status == model.FetchStatusFetched {
		c.AssetBytes.WithLabelValues(kind).Add(float64(task.Size))
		c.FetchDuration.WithLabelValues(kind, status).Observe(task.Duration().Seconds())
	}
	if task.Status == model.FetchStatusFailed {
		c.FetchDuration.WithLabelValues(kind, status).Observe(task.Duration().Seconds())
	}
}

// ObserveRun records a run summary once the run has finished
func (c *Collector) ObserveRun(summary *model.RunSummary) {
	if !summary.IsFinished() {
		return
	}

	c.RunsTotal.WithLabelValues(RunResult(summary)).Inc()
	c.RunDuration.Observe(summary.Duration().Seconds())
	c.LastRunTimestamp.Set(float64(summary.FinishedAt.Unix()))
	c.LastRunAssets.WithLabelValues(model.FetchStatusFetched.String()).Set(float64(summary.Fetched))
	c.LastRunAssets.WithLabelValues(model.FetchStatusSkipped.String()).Set(float64(summary.Skipped))
	c.LastRunAssets.WithLabelValues(model.FetchStatusFailed.String()).Set(float64(summary.Failed))
}

// RunResult classifies a finished run
func RunResult(summary *model.RunSummary) string {
	switch {
	case summary.Error != "":
		return RunResultError
	case summary.HasFailures():
		return RunResultFailures
	default:
		return RunResultOK
	}
}

// Gatherer returns the registry backing the collector
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current metrics to path for a node exporter
// textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
