package ioc

import (
	"context"
	"time"

	"github.com/KNICEX/oi-screener/internal/repo"
	"github.com/KNICEX/oi-screener/internal/schedule"
	"github.com/KNICEX/oi-screener/internal/service/bot"
	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/internal/service/monitor"
	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/KNICEX/oi-screener/internal/service/signal"
)

type ScannerConfig struct {
	Tick           time.Duration `mapstructure:"tick"`
	Interval       string        `mapstructure:"interval"`
	Concurrency    int           `mapstructure:"concurrency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

func InitScannerConfig() ScannerConfig {
	cfg := ScannerConfig{
		Tick:           monitor.DefaultTick,
		Interval:       "5",
		Concurrency:    20,
		RequestTimeout: 10 * time.Second,
	}
	if err := unmarshalKey("scanner", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitDefaults() bot.Defaults {
	cfg := bot.Defaults{
		Period:    15,
		Threshold: 0.05,
		TimeZone:  "UTC",
	}
	if err := unmarshalKey("defaults", &cfg); err != nil {
		panic(err)
	}
	if len(cfg.Exchanges) == 0 {
		cfg.Exchanges = append([]string(nil), exchange.SupportedExchanges...)
	}
	return cfg
}

func InitDetector(history repo.HistoryRepo, cfg ScannerConfig) *signal.Detector {
	return signal.NewDetector(history, signal.WithConcurrency(cfg.Concurrency))
}

// InitManager 会话启动时按用户配置选择交易所
func InitManager(ctx context.Context, registry *exchange.Registry, detector *signal.Detector, history repo.HistoryRepo,
	notifier notification.Notifier, scanner ScannerConfig, historyCfg HistoryConfig) *monitor.Manager {
	interval, err := exchange.ParseInterval(scanner.Interval)
	if err != nil {
		panic(err)
	}
	return monitor.NewManager(ctx, func(userId int64, settings monitor.Settings) (schedule.Task, error) {
		sources, err := registry.Resolve(settings.Exchanges)
		if err != nil {
			return nil, err
		}
		return monitor.NewScanner(userId, settings, interval, sources, detector, history, notifier,
			monitor.WithTick(scanner.Tick),
			monitor.WithRetentionDays(historyCfg.RetentionDays),
		), nil
	})
}

func InitActivityMonitor(manager *monitor.Manager, notifier notification.Notifier) *monitor.ActivityMonitor {
	type Config struct {
		InactivityDays int           `mapstructure:"inactivity_days"`
		WaitingDays    int           `mapstructure:"waiting_days"`
		CheckEvery     time.Duration `mapstructure:"check_every"`
	}

	cfg := Config{
		InactivityDays: monitor.DefaultInactivityDays,
		WaitingDays:    monitor.DefaultWaitingDays,
		CheckEvery:     monitor.DefaultCheckEvery,
	}
	if err := unmarshalKey("activity", &cfg); err != nil {
		panic(err)
	}
	return monitor.NewActivityMonitor(manager, notifier,
		monitor.WithInactivityDays(cfg.InactivityDays),
		monitor.WithWaitingDays(cfg.WaitingDays),
		monitor.WithCheckEvery(cfg.CheckEvery),
	)
}
