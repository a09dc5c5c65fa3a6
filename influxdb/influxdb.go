package influxdb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	keepalive "github.com/Imtiaz-Official/iso-toolkit-telegram-bot"
)

// Recorder implements keepalive.Recorder for InfluxDB 2.x. Each outcome
// becomes one point in the keepalive_ping measurement.
type Recorder struct {
	cfg    keepalive.InfluxDBConfig
	target string
	client influxdb2.Client
	writer api.WriteAPIBlocking
	logger *slog.Logger

	mu      sync.RWMutex
	healthy bool
}

// New creates a new InfluxDB recorder for the given target URL.
func New(cfg keepalive.InfluxDBConfig, target string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:    cfg,
		target: target,
		logger: logger,
	}
}

func (r *Recorder) Name() string {
	return "influxdb"
}

func (r *Recorder) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("connecting to InfluxDB", "url", r.cfg.URL, "org", r.cfg.Org, "bucket", r.cfg.Bucket)

	opts := influxdb2.DefaultOptions()
	r.client = influxdb2.NewClientWithOptions(r.cfg.URL, r.cfg.Token, opts)

	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	if health.Status != "pass" {
		return fmt.Errorf("InfluxDB health check failed: %s", health.Status)
	}

	r.writer = r.client.WriteAPIBlocking(r.cfg.Org, r.cfg.Bucket)
	r.healthy = true

	r.logger.Info("connected to InfluxDB", "version", *health.Version)
	return nil
}

func (r *Recorder) Record(ctx context.Context, outcomes []keepalive.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	r.mu.RLock()
	if r.writer == nil {
		r.mu.RUnlock()
		return fmt.Errorf("InfluxDB not initialized")
	}
	writer := r.writer
	r.mu.RUnlock()

	points := make([]*write.Point, 0, len(outcomes))
	for _, o := range outcomes {
		result := "success"
		if !o.Success {
			result = o.Reason.String()
		}
		point := influxdb2.NewPoint(
			"keepalive_ping",
			map[string]string{
				"target": r.target,
				"result": result,
			},
			map[string]interface{}{
				"success":     o.Success,
				"latency_ms":  float64(o.Latency.Microseconds()) / 1000,
				"status_code": o.StatusCode,
			},
			o.Timestamp,
		)
		points = append(points, point)
	}

	if err := writer.WritePoint(ctx, points...); err != nil {
		r.mu.Lock()
		r.healthy = false
		r.mu.Unlock()
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}

	r.mu.Lock()
	r.healthy = true
	r.mu.Unlock()

	r.logger.Debug("wrote outcomes to InfluxDB", "count", len(outcomes))
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		r.client.Close()
		r.client = nil
		r.writer = nil
	}
	r.healthy = false

	r.logger.Info("InfluxDB connection closed")
	return nil
}

func (r *Recorder) Healthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

// Compile-time check.
var _ keepalive.Recorder = (*Recorder)(nil)
