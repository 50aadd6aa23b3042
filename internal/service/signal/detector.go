package signal

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/KNICEX/oi-screener/internal/repo"
	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/pkg/decimalx"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 20

// Detector 持仓量异动检测
type Detector struct {
	history     repo.HistoryRepo
	recounter   *Recounter
	concurrency int
}

type Option func(d *Detector)

// WithConcurrency 单个交易所同时请求的交易对数量
func WithConcurrency(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

func NewDetector(history repo.HistoryRepo, opts ...Option) *Detector {
	d := &Detector{
		history:     history,
		recounter:   NewRecounter(history),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect 判断一组持仓量数据是否触发信号
// 最新的采样点无论是否触发都会写入历史
func (d *Detector) Detect(ctx context.Context, series []exchange.OpenInterest, fetch OhlcvFetcher, params Params) (Signal, bool) {
	if len(series) == 0 {
		return Signal{}, false
	}
	ois := slices.Clone(series)
	slices.SortFunc(ois, func(a, b exchange.OpenInterest) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	now := ois[0]

	if err := d.history.Append(ctx, entity.OpenInterestHistory{
		Symbol:       now.Symbol,
		Exchange:     now.Exchange,
		Timestamp:    now.Timestamp,
		OpenInterest: now.Value,
	}); err != nil {
		slog.Error("failed to append oi history", "exchange", now.Exchange, "symbol", now.Symbol, "error", err)
	}

	if now.Value == 0 {
		slog.Debug("skip symbol", "exchange", now.Exchange, "symbol", now.Symbol, "reason", "latest oi is zero")
		return Signal{}, false
	}

	anchor, deltaOI := -1, 0.0
	for i := 1; i < len(ois); i++ {
		delta, _ := Delta(now.Value, ois[i].Value)
		if delta > params.Threshold {
			anchor, deltaOI = i, delta
			break
		}
	}
	if anchor < 0 {
		return Signal{}, false
	}
	start := ois[anchor]

	if !validSample(now) || !validSample(start) {
		slog.Warn("skip symbol", "exchange", now.Exchange, "symbol", now.Symbol, "reason", "malformed oi time")
		return Signal{}, false
	}

	kls, err := fetch(ctx, start.Datetime, now.Datetime)
	if err != nil {
		slog.Error("failed to get ohlcv", "exchange", now.Exchange, "symbol", now.Symbol, "error", err)
		return Signal{}, false
	}
	if len(kls) < 2 || anchor >= len(kls) {
		slog.Debug("skip symbol", "exchange", now.Exchange, "symbol", now.Symbol, "reason", "too little ohlcv", "count", len(kls))
		return Signal{}, false
	}
	kls = slices.Clone(kls)
	slices.SortFunc(kls, func(a, b exchange.Ohlcv) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})

	deltaPrice, ok := Delta(kls[0].Close, kls[anchor].Close)
	if !ok {
		return Signal{}, false
	}
	deltaVolume, ok := Delta(kls[0].Volume, kls[anchor].Volume)
	if !ok {
		return Signal{}, false
	}

	count := 1
	recounted, err := d.recounter.Recount(ctx, now.Symbol, now.Exchange, start.Timestamp, params)
	if err != nil {
		slog.Error("failed to recount signals", "exchange", now.Exchange, "symbol", now.Symbol, "error", err)
	} else {
		count += recounted
	}

	return Signal{
		Exchange:           now.Exchange,
		Symbol:             now.Symbol,
		Timestamp:          start.Timestamp,
		Datetime:           now.Datetime,
		DeltaOI:            deltaOI,
		DeltaPrice:         deltaPrice,
		DeltaVolume:        deltaVolume,
		DeltaOIPercent:     decimalx.FormatPercent(deltaOI),
		DeltaPricePercent:  decimalx.FormatPercent(deltaPrice),
		DeltaVolumePercent: decimalx.FormatPercent(deltaVolume),
		DeltaTimeMinutes:   now.Datetime.Sub(start.Datetime).Minutes(),
		CountSignal24h:     count,
		ThresholdPeriod:    params.Period,
		Threshold:          params.Threshold,
	}, true
}

func validSample(oi exchange.OpenInterest) bool {
	return oi.Timestamp > 0 && !oi.Datetime.IsZero()
}

// Scan 并发检测多个交易对, 单个交易对失败不影响其他交易对
// 返回结果按 symbols 顺序排列
func (d *Detector) Scan(ctx context.Context, src exchange.DataSource, symbols []string, params Params) []Signal {
	results := make([]*Signal, len(symbols))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for idx, symbol := range symbols {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			ois, err := src.GetOpenInterest(ctx, symbol, params.Interval, params.Limit())
			if err != nil {
				slog.Error("failed to get open interest", "exchange", src.Name(), "symbol", symbol, "error", err)
				return nil
			}
			fetch := func(ctx context.Context, start, end time.Time) ([]exchange.Ohlcv, error) {
				return src.GetOhlcv(ctx, symbol, params.Interval, start, end)
			}
			if sig, ok := d.Detect(ctx, ois, fetch, params); ok {
				results[idx] = &sig
			}
			return nil
		})
	}
	_ = g.Wait()

	signals := make([]Signal, 0)
	for _, res := range results {
		if res != nil {
			signals = append(signals, *res)
		}
	}
	return signals
}
