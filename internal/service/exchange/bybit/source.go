package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
	bybit "github.com/bybit-exchange/bybit.go.api"
	"github.com/samber/lo"
)

var _ exchange.DataSource = (*Source)(nil)

const (
	defaultTimeout = 10 * time.Second
	category       = "linear"
	// 合约列表分页, 防止 cursor 异常时死循环
	maxInstrumentPages = 20
)

// Source bybit USDT 永续数据源
type Source struct {
	cli     *bybit.Client
	timeout time.Duration
}

type Option func(s *Source)

func WithTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func NewSource(cli *bybit.Client, opts ...Option) *Source {
	s := &Source{
		cli:     cli,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string {
	return "Bybit"
}

func (s *Source) GetUSDTSymbols(ctx context.Context) ([]string, error) {
	var (
		symbols []string
		cursor  string
	)
	for page := 0; page < maxInstrumentPages; page++ {
		params := map[string]interface{}{
			"category": category,
			"limit":    1000,
		}
		if cursor != "" {
			params["cursor"] = cursor
		}
		var res instrumentsResult
		if err := s.call(ctx, params, func(svc *bybit.BybitClientRequest, ctx context.Context) (*bybit.ServerResponse, error) {
			return svc.GetInstrumentInfo(ctx)
		}, &res); err != nil {
			return nil, err
		}
		symbols = append(symbols, res.usdtPerpetual()...)
		if res.NextPageCursor == "" || res.NextPageCursor == cursor {
			break
		}
		cursor = res.NextPageCursor
	}
	return lo.Uniq(symbols), nil
}

func (s *Source) GetOpenInterest(ctx context.Context, symbol string, interval exchange.Interval, limit int) ([]exchange.OpenInterest, error) {
	symbol = strings.ToUpper(symbol)
	params := map[string]interface{}{
		"category":     category,
		"symbol":       symbol,
		"intervalTime": fmt.Sprintf("%dmin", interval.Minutes()),
		"limit":        limit,
	}
	var res openInterestResult
	if err := s.call(ctx, params, func(svc *bybit.BybitClientRequest, ctx context.Context) (*bybit.ServerResponse, error) {
		return svc.GetOpenInterests(ctx)
	}, &res); err != nil {
		return nil, err
	}
	return res.convert(s.Name(), symbol)
}

func (s *Source) GetOhlcv(ctx context.Context, symbol string, interval exchange.Interval, start, end time.Time) ([]exchange.Ohlcv, error) {
	symbol = strings.ToUpper(symbol)
	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
		"interval": strconv.Itoa(interval.Minutes()),
	}
	if !start.IsZero() {
		params["start"] = start.UnixMilli()
	}
	if !end.IsZero() {
		params["end"] = end.UnixMilli()
	}
	var res klineResult
	if err := s.call(ctx, params, func(svc *bybit.BybitClientRequest, ctx context.Context) (*bybit.ServerResponse, error) {
		return svc.GetMarketKline(ctx)
	}, &res); err != nil {
		return nil, err
	}
	return res.convert(symbol)
}

// call 发起请求并把 Result 解码到 v
func (s *Source) call(ctx context.Context, params map[string]interface{},
	do func(svc *bybit.BybitClientRequest, ctx context.Context) (*bybit.ServerResponse, error), v any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := do(s.cli.NewUtaBybitServiceWithParams(params), ctx)
	if err != nil {
		return err
	}
	return decodeResult(resp, v)
}

func decodeResult(resp *bybit.ServerResponse, v any) error {
	if resp == nil {
		return fmt.Errorf("bybit empty response")
	}
	if resp.RetCode != 0 {
		return fmt.Errorf("bybit error %d: %s", resp.RetCode, resp.RetMsg)
	}
	payload, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("bybit marshal result: %w", err)
	}
	if err = json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("bybit decode result: %w", err)
	}
	return nil
}
