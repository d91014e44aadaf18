package service

import (
	"context"
	"errors"
	"strings"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

// WatchlistService manages the per-owner watchlists.
type WatchlistService interface {
	List(ctx context.Context, owner string) []entity.Stock
	Add(ctx context.Context, owner string, req dto.AddStockRequest) (*entity.Stock, error)
	Remove(ctx context.Context, owner, rawSymbol, rawMarket string) error
}

type watchlistService struct {
	log   *logger.Logger
	state StateService
	names NameResolver
	now   Clock
}

func NewWatchlistService(log *logger.Logger, state StateService, names NameResolver, now Clock) WatchlistService {
	return &watchlistService{
		log:   log,
		state: state,
		names: names,
		now:   now,
	}
}

func (s *watchlistService) List(ctx context.Context, owner string) []entity.Stock {
	return s.state.Snapshot().WatchlistOf(owner)
}

func (s *watchlistService) Add(ctx context.Context, owner string, req dto.AddStockRequest) (*entity.Stock, error) {
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, ErrInvalidSymbol
	}
	market, err := symbol.ParseMarket(req.Market)
	if err != nil {
		return nil, errors.Join(ErrInvalidMarket, err)
	}
	c := symbol.Normalize(req.Symbol, market)

	if containsStock(s.state.Snapshot().WatchlistOf(owner), c) {
		return nil, ErrDuplicateStock
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = s.names.Resolve(ctx, c)
	}
	stock := entity.Stock{Symbol: c.Symbol, Market: c.Market, Name: name, AddedAt: s.now()}

	err = s.state.Update(ctx, func(state *entity.AppState) error {
		list := state.WatchlistOf(owner)
		if containsStock(list, c) {
			return ErrDuplicateStock
		}
		state.SetWatchlist(owner, append(append([]entity.Stock(nil), list...), stock))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Stock added to watchlist",
		logger.StringField("owner", owner),
		logger.StringField("symbol", c.Key()),
		logger.StringField("name", name),
	)
	return &stock, nil
}

// Remove deletes the stock from owner's watchlist. rawMarket may be empty,
// in which case every entry with the symbol is removed. Removing a stock that
// is not listed succeeds without saving.
func (s *watchlistService) Remove(ctx context.Context, owner, rawSymbol, rawMarket string) error {
	if strings.TrimSpace(rawSymbol) == "" {
		return ErrInvalidSymbol
	}

	var match func(entity.Stock) bool
	if strings.TrimSpace(rawMarket) != "" {
		market, err := symbol.ParseMarket(rawMarket)
		if err != nil {
			return errors.Join(ErrInvalidMarket, err)
		}
		c := symbol.Normalize(rawSymbol, market)
		match = func(st entity.Stock) bool { return st.Canonical() == c }
	} else {
		raw := strings.ToUpper(strings.TrimSpace(rawSymbol))
		match = func(st entity.Stock) bool {
			return st.Symbol == raw || st.Canonical() == symbol.Normalize(raw, st.Market)
		}
	}

	err := s.state.Update(ctx, func(state *entity.AppState) error {
		list := state.WatchlistOf(owner)
		kept := make([]entity.Stock, 0, len(list))
		for _, st := range list {
			if !match(st) {
				kept = append(kept, st)
			}
		}
		if len(kept) == len(list) {
			return errNotWatched
		}
		state.SetWatchlist(owner, kept)
		return nil
	})
	if errors.Is(err, errNotWatched) {
		s.log.DebugContext(ctx, "Stock not in watchlist, nothing removed",
			logger.StringField("owner", owner),
			logger.StringField("symbol", rawSymbol),
		)
		return nil
	}
	return err
}

func containsStock(list []entity.Stock, c symbol.Canonical) bool {
	for _, st := range list {
		if st.Canonical() == c {
			return true
		}
	}
	return false
}
