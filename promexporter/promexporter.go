package promexporter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	keepalive "github.com/Imtiaz-Official/iso-toolkit-telegram-bot"
)

// SnapshotSource provides the current ping statistics. The keepalive
// Tracker satisfies it.
type SnapshotSource interface {
	Snapshot() keepalive.Snapshot
}

// Exporter serves ping statistics as Prometheus metrics over HTTP.
type Exporter struct {
	cfg    keepalive.PrometheusConfig
	source SnapshotSource
	server *http.Server
	logger *slog.Logger

	mu      sync.RWMutex
	healthy bool
}

// New creates a new Prometheus exporter reading from the given source.
func New(cfg keepalive.PrometheusConfig, source SnapshotSource, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		cfg:    cfg,
		source: source,
		logger: logger,
	}
}

// Start registers the collector and begins serving metrics.
func (e *Exporter) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	registry := prometheus.NewRegistry()
	if err := registry.Register(newCollector(e.source)); err != nil {
		return fmt.Errorf("failed to register collector: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(e.cfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", e.cfg.Port)
	e.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		e.logger.Info("starting Prometheus server", "addr", addr, "path", e.cfg.Path)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Error("Prometheus server error", "error", err)
			e.mu.Lock()
			e.healthy = false
			e.mu.Unlock()
		}
	}()

	e.healthy = true
	return nil
}

// Close shuts down the metrics server.
func (e *Exporter) Close() error {
	e.mu.Lock()
	server := e.server
	e.server = nil
	e.healthy = false
	e.mu.Unlock()

	if server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Healthy returns true if the exporter is serving.
func (e *Exporter) Healthy() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.healthy
}

// collector turns snapshots into Prometheus metrics at scrape time.
type collector struct {
	source SnapshotSource

	total       *prometheus.Desc
	successes   *prometheus.Desc
	failures    *prometheus.Desc
	consecutive *prometheus.Desc
	lastLatency *prometheus.Desc
	up          *prometheus.Desc
}

func newCollector(source SnapshotSource) *collector {
	return &collector{
		source: source,
		total: prometheus.NewDesc(
			"keepalive_pings_total",
			"Total number of health checks performed.",
			nil, nil,
		),
		successes: prometheus.NewDesc(
			"keepalive_ping_successes_total",
			"Number of successful health checks.",
			nil, nil,
		),
		failures: prometheus.NewDesc(
			"keepalive_ping_failures_total",
			"Number of failed health checks.",
			nil, nil,
		),
		consecutive: prometheus.NewDesc(
			"keepalive_consecutive_failures",
			"Length of the current failure streak.",
			nil, nil,
		),
		lastLatency: prometheus.NewDesc(
			"keepalive_last_latency_seconds",
			"Latency of the most recent health check.",
			nil, nil,
		),
		up: prometheus.NewDesc(
			"keepalive_target_up",
			"Whether the most recent health check succeeded.",
			nil, nil,
		),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.successes
	ch <- c.failures
	ch <- c.consecutive
	ch <- c.lastLatency
	ch <- c.up
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(snap.TotalPings))
	ch <- prometheus.MustNewConstMetric(c.successes, prometheus.CounterValue, float64(snap.Successes))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(snap.Failures))
	ch <- prometheus.MustNewConstMetric(c.consecutive, prometheus.GaugeValue, float64(snap.ConsecutiveFailures))
	ch <- prometheus.MustNewConstMetric(c.lastLatency, prometheus.GaugeValue, snap.LastLatency.Seconds())

	up := 0.0
	if snap.Up() {
		up = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
}

// Compile-time check.
var _ prometheus.Collector = (*collector)(nil)
