package binance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/pkg/decimalx"
	"github.com/adshao/go-binance/v2/futures"
)

func (s *Source) GetOpenInterest(ctx context.Context, symbol string, interval exchange.Interval, limit int) ([]exchange.OpenInterest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	symbol = strings.ToUpper(symbol)
	res, err := s.cli.NewOpenInterestStatisticsService().
		Symbol(symbol).
		Period(interval.ToString()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return s.convertOpenInterest(symbol, res)
}

func (s *Source) convertOpenInterest(symbol string, stats []*futures.OpenInterestStatistic) ([]exchange.OpenInterest, error) {
	ois := make([]exchange.OpenInterest, 0, len(stats))
	for _, st := range stats {
		if st == nil || st.SumOpenInterest == "" || st.Timestamp == 0 {
			continue
		}
		value, err := decimalx.ParseFloat(st.SumOpenInterest)
		if err != nil {
			return nil, fmt.Errorf("binance open interest %s: %w", symbol, err)
		}
		ois = append(ois, exchange.OpenInterest{
			Exchange:  s.Name(),
			Symbol:    symbol,
			Timestamp: st.Timestamp,
			Datetime:  time.UnixMilli(st.Timestamp),
			Value:     value,
		})
	}
	return ois, nil
}

func (s *Source) GetOhlcv(ctx context.Context, symbol string, interval exchange.Interval, start, end time.Time) ([]exchange.Ohlcv, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	symbol = strings.ToUpper(symbol)
	svc := s.cli.NewKlinesService().Symbol(symbol).Interval(interval.ToString())
	if !start.IsZero() {
		svc.StartTime(start.UnixMilli())
	}
	if !end.IsZero() {
		svc.EndTime(end.UnixMilli())
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return nil, err
	}
	return convertKlines(symbol, res)
}

func convertKlines(symbol string, klines []*futures.Kline) ([]exchange.Ohlcv, error) {
	kls := make([]exchange.Ohlcv, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		values, err := decimalx.ParseFloats(k.Close, k.Volume)
		if err != nil {
			return nil, fmt.Errorf("binance kline %s: %w", symbol, err)
		}
		kls = append(kls, exchange.Ohlcv{
			Timestamp: k.OpenTime,
			Close:     values[0],
			Volume:    values[1],
		})
	}
	return kls, nil
}
