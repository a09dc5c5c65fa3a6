package keepalive

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the full bot configuration. It is immutable for the
// process lifetime except through an explicit reload.
type Config struct {
	Global     GlobalConfig     `toml:"global"`
	Target     TargetConfig     `toml:"target"`
	Telegram   TelegramConfig   `toml:"telegram"`
	Alert      AlertConfig      `toml:"alert"`
	InfluxDB   InfluxDBConfig   `toml:"influxdb"`
	Prometheus PrometheusConfig `toml:"prometheus"`
}

// GlobalConfig contains settings shared across components.
type GlobalConfig struct {
	LogLevel      string   `toml:"log_level"`
	HistorySize   int      `toml:"history_size"`
	RetryAttempts int      `toml:"retry_attempts"`
	RetryDelay    Duration `toml:"retry_delay"`
}

// TargetConfig describes the deployment being kept alive.
type TargetConfig struct {
	URL            string   `toml:"url"`
	PingInterval   Duration `toml:"ping_interval"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// TelegramConfig contains the bot credential and command-access settings.
type TelegramConfig struct {
	Enabled        bool     `toml:"enabled"`
	Token          string   `toml:"token"`
	OwnerChatID    int64    `toml:"owner_chat_id"`
	AllowedUsers   []int64  `toml:"allowed_users"`
	WakeRetryDelay Duration `toml:"wake_retry_delay"`
}

// AlertConfig controls down-alert dispatch.
type AlertConfig struct {
	FailureThreshold int `toml:"failure_threshold"`
}

// InfluxDBConfig contains InfluxDB connection settings for the ping journal.
type InfluxDBConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	Org     string `toml:"org"`
	Bucket  string `toml:"bucket"`
}

// PrometheusConfig contains Prometheus exporter settings.
type PrometheusConfig struct {
	Enabled bool   `toml:"enabled"`
	Port    int    `toml:"port"`
	Path    string `toml:"path"`
}

// Duration is a wrapper around time.Duration that supports TOML parsing.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:      "info",
			HistorySize:   50,
			RetryAttempts: 3,
			RetryDelay:    Duration{1 * time.Second},
		},
		Target: TargetConfig{
			URL:            "https://iso-toolkit.onrender.com/",
			PingInterval:   Duration{10 * time.Minute},
			RequestTimeout: Duration{30 * time.Second},
		},
		Telegram: TelegramConfig{
			Enabled:        false,
			WakeRetryDelay: Duration{5 * time.Second},
		},
		Alert: AlertConfig{
			FailureThreshold: 3,
		},
		InfluxDB: InfluxDBConfig{
			Enabled: false,
		},
		Prometheus: PrometheusConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// LoadConfig reads and parses a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromString parses configuration from a TOML string.
func LoadConfigFromString(data string) (*Config, error) {
	cfg := DefaultConfig()

	if err := toml.Unmarshal([]byte(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config fields from environment variables. The bot is
// usually deployed with environment-only configuration, so every core
// setting has an override. Returns an error only for unparseable values.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("TARGET_URL"); v != "" {
		c.Target.URL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
		c.Telegram.Enabled = true
	}
	if v := os.Getenv("OWNER_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid OWNER_CHAT_ID %q: %w", v, err)
		}
		c.Telegram.OwnerChatID = id
	}
	if v := os.Getenv("PING_INTERVAL"); v != "" {
		d, err := parseEnvDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PING_INTERVAL %q: %w", v, err)
		}
		c.Target.PingInterval = Duration{d}
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := parseEnvDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.Target.RequestTimeout = Duration{d}
	}
	if v := os.Getenv("FAILURE_ALERT_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FAILURE_ALERT_THRESHOLD %q: %w", v, err)
		}
		c.Alert.FailureThreshold = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Global.LogLevel = v
	}
	return nil
}

// parseEnvDuration accepts either a Go duration string ("10m") or a bare
// number of seconds ("600"), which older deployments use.
func parseEnvDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
