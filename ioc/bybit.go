package ioc

import (
	"github.com/KNICEX/oi-screener/internal/service/exchange/bybit"
	bybitapi "github.com/bybit-exchange/bybit.go.api"
)

type BybitConfig struct {
	ApiKey    string `mapstructure:"api_key"`
	ApiSecret string `mapstructure:"api_secret"`
	BaseURL   string `mapstructure:"base_url"`
}

func InitBybitSource(cfg BybitConfig, scanner ScannerConfig) *bybit.Source {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.bybit.com"
	}
	cli := bybitapi.NewBybitHttpClient(cfg.ApiKey, cfg.ApiSecret, bybitapi.WithBaseURL(baseURL))
	return bybit.NewSource(cli, bybit.WithTimeout(scanner.RequestTimeout))
}
