package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/repository"
	"golang-stock-watchlist/pkg/chain"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

const NoHistoryText = "No historical data available."

// HistoryResolver returns the most recent sessions, oldest first.
type HistoryResolver interface {
	Resolve(ctx context.Context, c symbol.Canonical) dto.History
}

type historyResolver struct {
	chain    *chain.Chain[symbol.Canonical, []dto.HistoryBar]
	sessions int
}

func NewHistoryResolver(
	cfg *config.Config,
	log *logger.Logger,
	yahooRepo repository.YahooFinanceRepository,
	akToolsRepo repository.AKToolsRepository,
	now Clock,
) HistoryResolver {
	yahoo := chain.Func("yahoo_daily", func(ctx context.Context, c symbol.Canonical) ([]dto.HistoryBar, error) {
		return yahooRepo.GetDailyBars(ctx, c, "1mo")
	})
	akTools := chain.Func("aktools_hist", func(ctx context.Context, c symbol.Canonical) ([]dto.HistoryBar, error) {
		end := now()
		return akToolsRepo.GetDailyHistory(ctx, c, end.AddDate(0, -1, 0), end)
	})

	return &historyResolver{
		chain: chain.New("history", log, yahoo, akTools).
			WithEmpty(func(b []dto.HistoryBar) bool { return len(b) == 0 }).
			WithDelay(cfg.Analysis.ChainDelay).
			WithTimeout(cfg.Analysis.ProviderTimeout),
		sessions: cfg.Analysis.HistorySessions,
	}
}

func (r *historyResolver) Resolve(ctx context.Context, c symbol.Canonical) dto.History {
	bars := r.chain.ResolveOr(ctx, c, nil)
	if len(bars) == 0 {
		return dto.History{Text: NoHistoryText}
	}
	if len(bars) > r.sessions {
		bars = bars[len(bars)-r.sessions:]
	}
	return dto.History{Bars: bars, Text: FormatHistoryTable(bars)}
}

// FormatHistoryTable renders bars as a fixed-width text table.
func FormatHistoryTable(bars []dto.HistoryBar) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s  %10s  %10s  %10s  %10s  %14s\n", "Date", "Open", "High", "Low", "Close", "Volume"))
	for _, bar := range bars {
		b.WriteString(fmt.Sprintf("%-10s  %10.2f  %10.2f  %10.2f  %10.2f  %14.0f\n",
			bar.Date.Format(time.DateOnly), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
	}
	return strings.TrimRight(b.String(), "\n")
}
