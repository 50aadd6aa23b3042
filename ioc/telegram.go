package ioc

import (
	"os"
	"time"

	"github.com/KNICEX/oi-screener/internal/repo"
	"github.com/KNICEX/oi-screener/internal/service/bot"
	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/internal/service/monitor"
	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/KNICEX/oi-screener/internal/service/notification/telegram"
)

type TelegramConfig struct {
	Token        string        `mapstructure:"token"`
	BaseURL      string        `mapstructure:"base_url"`
	SendInterval time.Duration `mapstructure:"send_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
	// DryRun 信号只打印到标准输出
	DryRun bool `mapstructure:"dry_run"`
}

func InitTelegramConfig() TelegramConfig {
	cfg := TelegramConfig{
		SendInterval: 200 * time.Millisecond,
		PollTimeout:  30 * time.Second,
	}
	if err := unmarshalKey("telegram", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitTelegramCli(cfg TelegramConfig) *telegram.Client {
	if cfg.Token == "" {
		panic("no telegram token set")
	}
	return telegram.NewClient(cfg.Token, telegram.WithBaseURL(cfg.BaseURL))
}

func InitNotifier(cli *telegram.Client, cfg TelegramConfig) notification.Notifier {
	if cfg.DryRun {
		return notification.NewConsoleNotifier(os.Stdout)
	}
	return telegram.NewNotifier(cli, cfg.SendInterval)
}

func InitBot(cli *telegram.Client, notifier notification.Notifier, users repo.UserRepo, manager *monitor.Manager,
	activity *monitor.ActivityMonitor, defaults bot.Defaults, registry *exchange.Registry, cfg TelegramConfig) *bot.Bot {
	return bot.NewBot(cli, notifier, users, manager, activity, defaults, registry.Names(),
		bot.WithPollTimeout(cfg.PollTimeout))
}
