package signal

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/KNICEX/oi-screener/internal/repo"
	"github.com/KNICEX/oi-screener/internal/service/exchange"
)

type memHistory struct {
	mu      sync.Mutex
	rows    []entity.OpenInterestHistory
	findErr error
}

func (m *memHistory) Append(ctx context.Context, history entity.OpenInterestHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, history)
	return nil
}

func (m *memHistory) FindBefore(ctx context.Context, symbol, exchangeName string, before int64) ([]entity.OpenInterestHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	since := before - repo.HistoryWindow.Milliseconds()
	var res []entity.OpenInterestHistory
	for _, row := range m.rows {
		if row.Symbol == symbol && row.Exchange == exchangeName && row.Timestamp >= since && row.Timestamp <= before {
			res = append(res, row)
		}
	}
	slices.SortFunc(res, func(a, b entity.OpenInterestHistory) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return res, nil
}

func (m *memHistory) Trim(ctx context.Context, now int64, retentionDays int) error {
	return nil
}

func (m *memHistory) count(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.Symbol == symbol {
			n++
		}
	}
	return n
}

type fakeSource struct {
	name  string
	ois   map[string][]exchange.OpenInterest
	kls   map[string][]exchange.Ohlcv
	oiErr map[string]error
}

func (f *fakeSource) Name() string {
	return f.name
}

func (f *fakeSource) GetUSDTSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	for symbol := range f.ois {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)
	return symbols, nil
}

func (f *fakeSource) GetOpenInterest(ctx context.Context, symbol string, interval exchange.Interval, limit int) ([]exchange.OpenInterest, error) {
	if err := f.oiErr[symbol]; err != nil {
		return nil, err
	}
	return f.ois[symbol], nil
}

func (f *fakeSource) GetOhlcv(ctx context.Context, symbol string, interval exchange.Interval, start, end time.Time) ([]exchange.Ohlcv, error) {
	return f.kls[symbol], nil
}

var errNetwork = errors.New("network unreachable")

var baseTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// oiSeries 生成从 baseTime 开始每 5 分钟一个点的持仓量, values 按时间升序
func oiSeries(exchangeName, symbol string, values ...float64) []exchange.OpenInterest {
	res := make([]exchange.OpenInterest, 0, len(values))
	for i, v := range values {
		dt := baseTime.Add(time.Duration(i) * 5 * time.Minute)
		res = append(res, exchange.OpenInterest{
			Exchange:  exchangeName,
			Symbol:    symbol,
			Timestamp: dt.UnixMilli(),
			Datetime:  dt,
			Value:     v,
		})
	}
	return res
}

// candles 生成与 oiSeries 对齐的 K 线, closes/volumes 按时间升序
func candles(closes, volumes []float64) []exchange.Ohlcv {
	res := make([]exchange.Ohlcv, 0, len(closes))
	for i := range closes {
		res = append(res, exchange.Ohlcv{
			Timestamp: baseTime.Add(time.Duration(i) * 5 * time.Minute).UnixMilli(),
			Close:     closes[i],
			Volume:    volumes[i],
		})
	}
	return res
}

func fixedFetcher(kls []exchange.Ohlcv, err error) OhlcvFetcher {
	return func(ctx context.Context, start, end time.Time) ([]exchange.Ohlcv, error) {
		return kls, err
	}
}
