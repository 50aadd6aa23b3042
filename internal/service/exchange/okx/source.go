package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/pkg/decimalx"
	"golang.org/x/time/rate"
)

var _ exchange.DataSource = (*Source)(nil)

const (
	DefaultBaseURL = "https://www.okx.com"
	defaultTimeout = 10 * time.Second
	// 公共接口限频 20 次/2s
	defaultRPS   = 10
	defaultBurst = 10
)

// Source OKX USDT 永续数据源, 对外使用 BTCUSDT 形式的交易对
type Source struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

type Option func(s *Source)

func WithBaseURL(baseURL string) Option {
	return func(s *Source) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithRateLimit(rps float64, burst int) Option {
	return func(s *Source) {
		if rps > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithUserAgent(agent string) Option {
	return func(s *Source) {
		s.client.Transport = userAgentTransport{agent: agent, base: s.client.Transport}
	}
}

func NewSource(opts ...Option) *Source {
	s := &Source{
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string {
	return "OKX"
}

// BTCUSDT -> BTC-USDT-SWAP
func toInstId(symbol string) string {
	symbol = strings.ToUpper(symbol)
	if strings.HasSuffix(symbol, "-SWAP") {
		return symbol
	}
	return strings.TrimSuffix(symbol, "USDT") + "-USDT-SWAP"
}

// BTC-USDT-SWAP -> BTCUSDT
func fromInstId(instId string) string {
	return strings.ReplaceAll(strings.TrimSuffix(strings.ToUpper(instId), "-SWAP"), "-", "")
}

type response struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (s *Source) get(ctx context.Context, path string, params url.Values, v any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("okx %s status %d: %s", path, resp.StatusCode, string(body))
	}

	var res response
	if err = json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("okx %s decode: %w", path, err)
	}
	if res.Code != "0" {
		return fmt.Errorf("okx %s error %s: %s", path, res.Code, res.Msg)
	}
	return json.Unmarshal(res.Data, v)
}

func (s *Source) GetUSDTSymbols(ctx context.Context) ([]string, error) {
	var instruments []struct {
		InstId    string `json:"instId"`
		InstType  string `json:"instType"`
		SettleCcy string `json:"settleCcy"`
		State     string `json:"state"`
	}
	if err := s.get(ctx, "/api/v5/public/instruments", url.Values{"instType": {"SWAP"}}, &instruments); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		if inst.SettleCcy != "USDT" || inst.InstType != "SWAP" {
			continue
		}
		if inst.State != "" && inst.State != "live" {
			continue
		}
		symbols = append(symbols, fromInstId(inst.InstId))
	}
	return symbols, nil
}

// GetOpenInterest 每行: [ts, oi, oiCcy, oiUsd]
func (s *Source) GetOpenInterest(ctx context.Context, symbol string, interval exchange.Interval, limit int) ([]exchange.OpenInterest, error) {
	var rows [][]string
	err := s.get(ctx, "/api/v5/rubik/stat/contracts/open-interest-history", url.Values{
		"instId": {toInstId(symbol)},
		"period": {interval.ToString()},
		"limit":  {strconv.Itoa(limit)},
	}, &rows)
	if err != nil {
		return nil, err
	}
	return convertOpenInterest(s.Name(), fromInstId(symbol), rows)
}

func convertOpenInterest(exchangeName, symbol string, rows [][]string) ([]exchange.OpenInterest, error) {
	ois := make([]exchange.OpenInterest, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("okx open interest timestamp %s: %w", symbol, err)
		}
		value, err := decimalx.ParseFloat(row[1])
		if err != nil {
			return nil, fmt.Errorf("okx open interest %s: %w", symbol, err)
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

// GetOhlcv 每行: [ts, o, h, l, c, vol, ...]
// after 返回早于该时间的数据, before 返回晚于该时间的数据
func (s *Source) GetOhlcv(ctx context.Context, symbol string, interval exchange.Interval, start, end time.Time) ([]exchange.Ohlcv, error) {
	params := url.Values{
		"instId": {toInstId(symbol)},
		"bar":    {interval.ToString()},
	}
	if !end.IsZero() {
		params.Set("after", strconv.FormatInt(end.UnixMilli()+1, 10))
	}
	if !start.IsZero() {
		params.Set("before", strconv.FormatInt(start.UnixMilli()-1, 10))
	}
	var rows [][]string
	if err := s.get(ctx, "/api/v5/market/candles", params, &rows); err != nil {
		return nil, err
	}
	return convertCandles(fromInstId(symbol), rows)
}

func convertCandles(symbol string, rows [][]string) ([]exchange.Ohlcv, error) {
	kls := make([]exchange.Ohlcv, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("okx candle timestamp %s: %w", symbol, err)
		}
		values, err := decimalx.ParseFloats(row[4], row[5])
		if err != nil {
			return nil, fmt.Errorf("okx candle %s: %w", symbol, err)
		}
		kls = append(kls, exchange.Ohlcv{
			Timestamp: ts,
			Close:     values[0],
			Volume:    values[1],
		})
	}
	return kls, nil
}
