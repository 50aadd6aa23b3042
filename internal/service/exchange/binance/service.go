package binance

import (
	"context"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/adshao/go-binance/v2/futures"
)

var _ exchange.DataSource = (*Source)(nil)

const defaultTimeout = 10 * time.Second

// Source 币安 U 本位合约数据源
type Source struct {
	cli     *futures.Client
	timeout time.Duration
}

type Option func(s *Source)

// WithTimeout 单次请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func NewSource(cli *futures.Client, opts ...Option) *Source {
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
	return "Binance"
}

func (s *Source) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
