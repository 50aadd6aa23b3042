package binance

import (
	"context"
	"strings"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/samber/lo"
)

// GetUSDTSymbols 返回交易中的 USDT 永续合约
func (s *Source) GetUSDTSymbols(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	info, err := s.cli.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, err
	}

	perpetual := lo.Filter(info.Symbols, func(item futures.Symbol, index int) bool {
		return item.ContractType == futures.ContractTypePerpetual &&
			item.QuoteAsset == "USDT" &&
			(item.Status == "" || item.Status == "TRADING")
	})
	return lo.Map(perpetual, func(item futures.Symbol, index int) string {
		return strings.ToUpper(item.Symbol)
	}), nil
}
