package exchange

import (
	"context"
	"errors"
	"time"
)

var ErrUnknownExchange = errors.New("unknown exchange")

// OpenInterest 某一时刻的持仓量
type OpenInterest struct {
	Exchange  string
	Symbol    string
	Timestamp int64 // 毫秒
	Datetime  time.Time
	Value     float64
}

// Ohlcv 只保留信号计算需要的字段
type Ohlcv struct {
	Timestamp int64 // 毫秒
	Close     float64
	Volume    float64
}

// DataSource 交易所行情数据源
// 调用方把错误视为本轮无数据, 不会中断扫描
type DataSource interface {
	Name() string
	GetUSDTSymbols(ctx context.Context) ([]string, error)
	// GetOpenInterest 返回最近 limit 个持仓量点, 不保证顺序
	GetOpenInterest(ctx context.Context, symbol string, interval Interval, limit int) ([]OpenInterest, error)
	// GetOhlcv 返回 [start, end] 内的 K 线, 不保证顺序
	GetOhlcv(ctx context.Context, symbol string, interval Interval, start, end time.Time) ([]Ohlcv, error)
}
