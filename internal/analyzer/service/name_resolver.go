package service

import (
	"context"
	"fmt"
	"strings"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/pkg/cache"
	"golang-stock-watchlist/pkg/chain"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

const providerReferenceTable = "reference_table"

// NameResolver returns a display name. The symbol itself is returned when
// every source fails, and that fallback is never cached.
type NameResolver interface {
	Resolve(ctx context.Context, c symbol.Canonical) string
}

type nameResolver struct {
	cfg   *config.Config
	log   *logger.Logger
	names cache.Cache[string]
	chain *chain.Chain[symbol.Canonical, string]
}

func NewNameResolver(
	cfg *config.Config,
	log *logger.Logger,
	names cache.Cache[string],
	referenceTables *TableCache[dto.ReferenceTable],
	tencentRepo repository.TencentRepository,
	sinaRepo repository.SinaRepository,
	yahooRepo repository.YahooFinanceRepository,
) NameResolver {
	reference := chain.Func(providerReferenceTable, func(ctx context.Context, c symbol.Canonical) (string, error) {
		table, err := referenceTables.Get(ctx, c.Market)
		if err != nil {
			return "", err
		}
		name, ok := table[c.Symbol]
		if !ok {
			return "", fmt.Errorf("%s: %w", c, repository.ErrNotFound)
		}
		return name, nil
	})

	return &nameResolver{
		cfg:   cfg,
		log:   log,
		names: names,
		chain: chain.New("name", log,
			reference,
			chain.Func("tencent_quote", tencentRepo.GetName),
			chain.Func("sina_quote", sinaRepo.GetName),
			chain.Func("yahoo_meta", yahooRepo.GetName),
		).
			WithEmpty(func(s string) bool { return strings.TrimSpace(s) == "" }).
			WithTimeout(cfg.Analysis.ProviderTimeout),
	}
}

func (r *nameResolver) Resolve(ctx context.Context, c symbol.Canonical) string {
	key := "name:" + c.Key()
	if name, ok := r.names.Get(ctx, key); ok {
		return name
	}

	res := r.chain.Resolve(ctx, c)
	if !res.OK() {
		r.log.WarnContext(ctx, "Falling back to symbol as display name",
			logger.StringField("symbol", c.Key()),
			logger.ErrorField(res.Err),
		)
		return c.Symbol
	}

	name := strings.TrimSpace(res.Value)
	ttl := r.cfg.Cache.NameTTL
	if res.Provider == providerReferenceTable {
		ttl = r.cfg.Cache.ReferenceTableTTL
	}
	r.names.Set(ctx, key, name, ttl)
	return name
}
