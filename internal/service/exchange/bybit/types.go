package bybit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/pkg/decimalx"
)

type instrumentsResult struct {
	List []struct {
		Symbol       string `json:"symbol"`
		ContractType string `json:"contractType"`
		Status       string `json:"status"`
		QuoteCoin    string `json:"quoteCoin"`
	} `json:"list"`
	NextPageCursor string `json:"nextPageCursor"`
}

func (r instrumentsResult) usdtPerpetual() []string {
	var symbols []string
	for _, item := range r.List {
		if item.QuoteCoin != "USDT" || item.ContractType != "LinearPerpetual" {
			continue
		}
		if item.Status != "" && item.Status != "Trading" {
			continue
		}
		symbols = append(symbols, strings.ToUpper(item.Symbol))
	}
	return symbols
}

type openInterestResult struct {
	List []struct {
		OpenInterest string `json:"openInterest"`
		Timestamp    string `json:"timestamp"`
	} `json:"list"`
}

func (r openInterestResult) convert(exchangeName, symbol string) ([]exchange.OpenInterest, error) {
	ois := make([]exchange.OpenInterest, 0, len(r.List))
	for _, item := range r.List {
		if item.OpenInterest == "" || item.Timestamp == "" {
			continue
		}
		ts, err := strconv.ParseInt(item.Timestamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit open interest timestamp %s: %w", symbol, err)
		}
		value, err := decimalx.ParseFloat(item.OpenInterest)
		if err != nil {
			return nil, fmt.Errorf("bybit open interest %s: %w", symbol, err)
		}
		ois = append(ois, exchange.OpenInterest{
			Exchange:  exchangeName,
			Symbol:    symbol,
			Timestamp: ts,
			Datetime:  time.UnixMilli(ts),
			Value:     value,
		})
	}
	return ois, nil
}

// klineResult list 每项: [startTime, open, high, low, close, volume, turnover]
type klineResult struct {
	List [][]string `json:"list"`
}

func (r klineResult) convert(symbol string) ([]exchange.Ohlcv, error) {
	kls := make([]exchange.Ohlcv, 0, len(r.List))
	for _, row := range r.List {
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit kline timestamp %s: %w", symbol, err)
		}
		values, err := decimalx.ParseFloats(row[4], row[5])
		if err != nil {
			return nil, fmt.Errorf("bybit kline %s: %w", symbol, err)
		}
		kls = append(kls, exchange.Ohlcv{
			Timestamp: ts,
			Close:     values[0],
			Volume:    values[1],
		})
	}
	return kls, nil
}
