package ioc

import (
	"github.com/KNICEX/oi-screener/internal/service/exchange/binance"
	"github.com/adshao/go-binance/v2/futures"
)

type BinanceConfig struct {
	ApiKey    string `mapstructure:"api_key"`
	ApiSecret string `mapstructure:"api_secret"`
	BaseURL   string `mapstructure:"base_url"`
}

func InitBinanceSource(cfg BinanceConfig, scanner ScannerConfig) *binance.Source {
	// 行情接口不需要签名, key 可以为空
	cli := futures.NewClient(cfg.ApiKey, cfg.ApiSecret)
	if cfg.BaseURL != "" {
		cli.BaseURL = cfg.BaseURL
	}
	return binance.NewSource(cli, binance.WithTimeout(scanner.RequestTimeout))
}
