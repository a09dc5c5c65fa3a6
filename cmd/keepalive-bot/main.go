package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	keepalive "github.com/Imtiaz-Official/iso-toolkit-telegram-bot"
	"github.com/Imtiaz-Official/iso-toolkit-telegram-bot/influxdb"
	"github.com/Imtiaz-Official/iso-toolkit-telegram-bot/promexporter"
	"github.com/Imtiaz-Official/iso-toolkit-telegram-bot/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, _ := keepalive.NewLogger(cfg.Global.LogLevel)

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("configuration error: Telegram bot token is required (set TELEGRAM_BOT_TOKEN or telegram.token)")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	opts := []keepalive.Option{
		keepalive.WithConfig(cfg),
		keepalive.WithLogger(logger),
	}
	if cfg.Telegram.OwnerChatID != 0 {
		opts = append(opts, keepalive.WithNotifier(telegram.NewNotifier(bot, cfg.Telegram.OwnerChatID)))
	} else {
		logger.Warn("no owner chat configured, down alerts will only be logged")
	}
	if cfg.InfluxDB.Enabled {
		opts = append(opts, keepalive.WithRecorder(influxdb.New(cfg.InfluxDB, cfg.Target.URL, logger)))
	}

	sched, err := keepalive.New(opts...)
	if err != nil {
		return err
	}

	signals := keepalive.NewSignalHandler(logger)
	ctx := signals.Start(context.Background())

	if cfg.Prometheus.Enabled {
		exporter := promexporter.New(cfg.Prometheus, sched.Tracker(), logger)
		if err := exporter.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics exporter: %w", err)
		}
		defer exporter.Close()
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	go watchReload(ctx, signals, *configPath, sched, logger)

	gateway := telegram.New(bot, sched, telegram.Config{
		OwnerID:        cfg.Telegram.OwnerChatID,
		AllowedUsers:   cfg.Telegram.AllowedUsers,
		WakeRetryDelay: cfg.Telegram.WakeRetryDelay.Duration,
	}, logger)

	logger.Info("bot started",
		"target", cfg.Target.URL,
		"interval", cfg.Target.PingInterval.Duration,
	)
	return gateway.Run(ctx)
}

func loadConfig(path string) (*keepalive.Config, error) {
	var cfg *keepalive.Config
	if path != "" {
		loaded, err := keepalive.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = keepalive.DefaultConfig()
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func watchReload(ctx context.Context, signals *keepalive.SignalHandler, path string, sched *keepalive.Scheduler, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals.Reload():
			if path == "" {
				logger.Warn("no config file, ignoring reload signal")
				continue
			}
			cfg, err := loadConfig(path)
			if err != nil {
				logger.Error("config reload failed, keeping current config", "error", err)
				continue
			}
			sched.Reload(cfg)
		}
	}
}
