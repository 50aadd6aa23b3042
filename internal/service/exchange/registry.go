package exchange

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	Binance = "binance"
	Bybit   = "bybit"
	Okx     = "okx"
)

var SupportedExchanges = []string{Binance, Bybit, Okx}

// Registry 按名称查找数据源, 名称不区分大小写
type Registry struct {
	sources map[string]DataSource
}

func NewRegistry(sources ...DataSource) *Registry {
	return &Registry{
		sources: lo.SliceToMap(sources, func(item DataSource) (string, DataSource) {
			return strings.ToLower(item.Name()), item
		}),
	}
}

func (r *Registry) Get(name string) (DataSource, error) {
	src, ok := r.sources[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExchange, name)
	}
	return src, nil
}

// Resolve 按顺序返回 names 对应的数据源, 任一未知则报错
func (r *Registry) Resolve(names []string) ([]DataSource, error) {
	res := make([]DataSource, 0, len(names))
	for _, name := range lo.Uniq(lo.Map(names, func(item string, index int) string {
		return strings.ToLower(item)
	})) {
		src, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		res = append(res, src)
	}
	return res, nil
}

func (r *Registry) Names() []string {
	return lo.Filter(SupportedExchanges, func(item string, index int) bool {
		_, ok := r.sources[item]
		return ok
	})
}

var exchangeURLs = map[string]string{
	Binance: "https://www.binance.com/en/futures/%s?type=perpetual&interval=5m",
	Bybit:   "https://www.bybit.com/trade/usdt/%s?interval=5",
	Okx:     "https://www.okx.com/trade-swap/%s",
}

// Link 交易页面链接, 未知交易所返回 "#"
func Link(exchange, symbol string) string {
	tpl, ok := exchangeURLs[strings.ToLower(exchange)]
	if !ok {
		return "#"
	}
	if strings.ToLower(exchange) == Okx {
		symbol = strings.ToLower(symbol)
	}
	return fmt.Sprintf(tpl, symbol)
}
