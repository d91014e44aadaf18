package service

import (
	"context"
	"fmt"
	"math"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/pkg/chain"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

// PriceResolver returns the latest price, or nil when no source has one.
type PriceResolver interface {
	Resolve(ctx context.Context, c symbol.Canonical) *float64
}

type priceResolver struct {
	chain *chain.Chain[symbol.Canonical, float64]
}

func NewPriceResolver(
	cfg *config.Config,
	log *logger.Logger,
	spotTables *TableCache[dto.SpotTable],
	yahooRepo repository.YahooFinanceRepository,
) PriceResolver {
	spot := chain.Func("spot_table", func(ctx context.Context, c symbol.Canonical) (float64, error) {
		table, err := spotTables.Get(ctx, c.Market)
		if err != nil {
			return 0, err
		}
		quote, ok := table[c.Symbol]
		if !ok {
			return 0, fmt.Errorf("%s: %w", c, repository.ErrNotFound)
		}
		return quote.Price, nil
	})
	yahoo := chain.Func("yahoo_quote", yahooRepo.GetQuote)

	return &priceResolver{
		chain: chain.New("price", log, spot, yahoo).
			WithEmpty(func(p float64) bool { return p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) }).
			WithDelay(cfg.Analysis.ChainDelay).
			WithTimeout(cfg.Analysis.ProviderTimeout),
	}
}

func (r *priceResolver) Resolve(ctx context.Context, c symbol.Canonical) *float64 {
	res := r.chain.Resolve(ctx, c)
	if !res.OK() {
		return nil
	}
	price := res.Value
	return &price
}
