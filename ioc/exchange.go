package ioc

import (
	"github.com/KNICEX/oi-screener/internal/service/exchange"
)

type exchangeConfig struct {
	Binance struct {
		Enabled       bool `mapstructure:"enabled"`
		BinanceConfig `mapstructure:",squash"`
	} `mapstructure:"binance"`
	Bybit struct {
		Enabled     bool `mapstructure:"enabled"`
		BybitConfig `mapstructure:",squash"`
	} `mapstructure:"bybit"`
	Okx struct {
		Enabled   bool `mapstructure:"enabled"`
		OkxConfig `mapstructure:",squash"`
	} `mapstructure:"okx"`
}

// InitRegistry 按配置启用的交易所构造数据源
func InitRegistry(scanner ScannerConfig) *exchange.Registry {
	var cfg exchangeConfig
	cfg.Binance.Enabled, cfg.Bybit.Enabled, cfg.Okx.Enabled = true, true, true
	if err := unmarshalKey("exchange", &cfg); err != nil {
		panic(err)
	}

	var sources []exchange.DataSource
	if cfg.Binance.Enabled {
		sources = append(sources, InitBinanceSource(cfg.Binance.BinanceConfig, scanner))
	}
	if cfg.Bybit.Enabled {
		sources = append(sources, InitBybitSource(cfg.Bybit.BybitConfig, scanner))
	}
	if cfg.Okx.Enabled {
		sources = append(sources, InitOkxSource(cfg.Okx.OkxConfig, scanner))
	}
	if len(sources) == 0 {
		panic("no exchange enabled")
	}
	return exchange.NewRegistry(sources...)
}
