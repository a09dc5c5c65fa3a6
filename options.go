package keepalive

import (
	"log/slog"
	"net/http"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConfigFile sets the path to a TOML config file.
func WithConfigFile(path string) Option {
	return func(s *Scheduler) {
		s.cfgPath = path
	}
}

// WithConfig provides a Config directly instead of loading from file.
func WithConfig(cfg *Config) Option {
	return func(s *Scheduler) {
		s.cfg = cfg
	}
}

// WithLogger provides a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithNotifier sets the alert notifier. Without one, alerts are logged
// locally and not delivered anywhere.
func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) {
		s.notifier = n
	}
}

// WithHTTPClient provides a custom HTTP client for pings.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scheduler) {
		s.client = c
	}
}

// WithRecorder adds an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		s.recorders = append(s.recorders, r)
	}
}

// WithEcho enables echo mode (outcomes to stdout).
func WithEcho(enabled bool) Option {
	return func(s *Scheduler) {
		s.echoMode = enabled
	}
}
