package ioc

import (
	"github.com/KNICEX/oi-screener/internal/service/exchange/okx"
)

type OkxConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	UserAgent string  `mapstructure:"user_agent"`
	RPS       float64 `mapstructure:"rps"`
	Burst     int     `mapstructure:"burst"`
}

func InitOkxSource(cfg OkxConfig, scanner ScannerConfig) *okx.Source {
	opts := []okx.Option{
		okx.WithBaseURL(cfg.BaseURL),
		okx.WithTimeout(scanner.RequestTimeout),
		okx.WithRateLimit(cfg.RPS, cfg.Burst),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, okx.WithUserAgent(cfg.UserAgent))
	}
	return okx.NewSource(opts...)
}
