package signal

import (
	"context"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
)

// Params 一次扫描使用的阈值配置
type Params struct {
	// Threshold 持仓量变化比例, 0.05 即 5%
	Threshold float64
	// Period 观察窗口, 分钟
	Period int
	// Interval 采样粒度
	Interval exchange.Interval
}

// Limit 需要请求的持仓量点数
func (p Params) Limit() int {
	minutes := p.Interval.Minutes()
	if minutes <= 0 {
		return 1
	}
	return p.Period/minutes + 1
}

type Signal struct {
	Exchange string
	Symbol   string
	// Timestamp 窗口起点 (触发点) 毫秒时间戳
	Timestamp int64
	// Datetime 最新一个采样点的时间
	Datetime time.Time

	DeltaOI     float64
	DeltaPrice  float64
	DeltaVolume float64

	DeltaOIPercent     string
	DeltaPricePercent  string
	DeltaVolumePercent string

	DeltaTimeMinutes float64
	CountSignal24h   int

	ThresholdPeriod int
	Threshold       float64
}

// OhlcvFetcher 拉取 [start, end] 内的 K 线, 已绑定交易所和交易对
type OhlcvFetcher func(ctx context.Context, start, end time.Time) ([]exchange.Ohlcv, error)

// Delta 以最新值为分母的变化率, latest 为 0 时无定义
func Delta(latest, earlier float64) (float64, bool) {
	if latest == 0 {
		return 0, false
	}
	return (latest - earlier) / latest, true
}
