package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/cache"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAssembler struct {
	now   Clock
	calls []symbol.Canonical
}

func (a *countingAssembler) Assemble(ctx context.Context, c symbol.Canonical) entity.AnalysisReport {
	a.calls = append(a.calls, c)
	return entity.AnalysisReport{
		ID:             fmt.Sprintf("r-%d", len(a.calls)),
		Symbol:         c.Symbol,
		Market:         c.Market,
		Name:           c.Symbol,
		Content:        "{}",
		GeneratedAt:    a.now(),
		Recommendation: entity.RecommendationHold,
	}
}

func newStateService(t *testing.T, state *entity.AppState) (StateService, *fakeStateRepo) {
	t.Helper()
	repo := &fakeStateRepo{state: state}
	svc := NewStateService(repo, logger.NewNop())
	require.NoError(t, svc.Load(context.Background()))
	return svc, repo
}

func TestAnalysisJob_EndToEndAAPL(t *testing.T) {
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	cfg := testConfig()
	log := logger.NewNop()

	state := entity.NewAppState()
	state.Watchlist = []entity.Stock{{Symbol: "AAPL", Market: symbol.MarketUS, Name: "Apple Inc."}}
	stateSvc, repo := newStateService(t, state)

	bars := make([]dto.HistoryBar, 5)
	for i := range bars {
		bars[i] = dto.HistoryBar{Date: day(i + 4), Open: 148, High: 152, Low: 147, Close: 149 + float64(i), Volume: float64(1000000 * (i + 1))}
	}
	yahoo := &fakeYahoo{quote: 150.25, bars: bars, nameErr: errUpstream}
	ak := &fakeAKTools{spotErr: errUpstream, fundFlowErr: errUpstream, historyErr: errUpstream}
	llm := &fakeLLM{responses: map[string]string{
		"primary": `{"recommendation":"BUY","summary":"上升趋势"}`,
	}}
	generator := NewTextGenerator(cfg, log, llm)

	refTables := NewTableCache("reference", cache.NewMemory[dto.ReferenceTable](time.Minute, time.Now), time.Hour,
		func(ctx context.Context, m symbol.Market) (dto.ReferenceTable, error) { return nil, errUpstream }, log)
	names := NewNameResolver(cfg, log, cache.NewMemory[string](time.Minute, time.Now), refTables,
		&fakeTencent{fakeNameSource: fakeNameSource{name: "苹果"}}, &fakeNameSource{err: errUpstream}, yahoo)

	assembler := NewReportAssembler(log,
		NewPriceResolver(cfg, log, newSpotTables(ak), yahoo),
		NewHistoryResolver(cfg, log, yahoo, ak, fixedClock(now)),
		NewMoneyFlowResolver(cfg, log, ak),
		names,
		NewNewsAggregator(cfg, log, generator, nil, fixedClock(now), &fakeSearch{name: "tavily"}),
		generator,
		fixedClock(now),
	)
	notifier := &fakeNotifier{}
	job := NewAnalysisJob(log, stateSvc, assembler, notifier, time.UTC, 0, fixedClock(now))

	summary := job.Run(context.Background())

	require.Len(t, summary.Reports, 1)
	report := summary.Reports[0]
	require.NotNil(t, report.Price)
	assert.Equal(t, 150.25, *report.Price)
	assert.Equal(t, entity.RecommendationBuy, report.Recommendation)
	assert.Equal(t, "苹果", report.Name)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	for _, b := range bars {
		assert.Contains(t, prompt, b.Date.Format(time.DateOnly))
	}
	assert.Contains(t, prompt, "基于历史行情推算")
	assert.Contains(t, prompt, "成交量 5,000,000 (较前日+25.0%)")
	assert.Contains(t, prompt, NoNewsText)

	persisted := repo.state
	require.Len(t, persisted.Reports, 1)
	assert.Equal(t, entity.GuestOwner, persisted.Reports[0].Owner)
	assert.Equal(t, entity.RecommendationBuy, persisted.Reports[0].Recommendation)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "AAPL")
}

func TestAnalysisJob_SameDayRunReplacesReport(t *testing.T) {
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	state := entity.NewAppState()
	state.Watchlist = []entity.Stock{{Symbol: "AAPL", Market: symbol.MarketUS}}
	stateSvc, repo := newStateService(t, state)

	clock := now
	assembler := &countingAssembler{now: func() time.Time { return clock }}
	job := NewAnalysisJob(logger.NewNop(), stateSvc, assembler, nil, time.UTC, 0, func() time.Time { return clock })

	job.Run(context.Background())
	clock = now.Add(3 * time.Hour)
	job.Run(context.Background())

	require.Len(t, repo.state.Reports, 1)
	assert.Equal(t, "r-2", repo.state.Reports[0].ID)
}

func TestAnalysisJob_PurgesReportsOlderThanYesterday(t *testing.T) {
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	state := entity.NewAppState()
	state.Reports = []entity.AnalysisReport{
		{ID: "old", Symbol: "MSFT", Market: symbol.MarketUS, GeneratedAt: now.AddDate(0, 0, -3)},
		{ID: "yesterday", Symbol: "MSFT", Market: symbol.MarketUS, GeneratedAt: now.AddDate(0, 0, -1).Add(-8 * time.Hour)},
	}
	stateSvc, repo := newStateService(t, state)

	job := NewAnalysisJob(logger.NewNop(), stateSvc, &countingAssembler{now: fixedClock(now)}, nil, time.UTC, 0, fixedClock(now))
	summary := job.Run(context.Background())

	assert.Equal(t, 1, summary.Purged)
	require.Len(t, repo.state.Reports, 1)
	assert.Equal(t, "yesterday", repo.state.Reports[0].ID)
}

func TestAnalysisJob_DeduplicatesFetchesAcrossOwners(t *testing.T) {
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	state := entity.NewAppState()
	state.Watchlist = []entity.Stock{{Symbol: "00700", Market: symbol.MarketHK}}
	state.SetWatchlist("b@example.com", []entity.Stock{{Symbol: "700", Market: symbol.MarketHK}, {Symbol: "AAPL", Market: symbol.MarketUS}})
	state.SetWatchlist("a@example.com", []entity.Stock{{Symbol: "0700", Market: symbol.MarketHK}})
	stateSvc, repo := newStateService(t, state)

	assembler := &countingAssembler{now: fixedClock(now)}
	job := NewAnalysisJob(logger.NewNop(), stateSvc, assembler, nil, time.UTC, 0, fixedClock(now))
	job.Run(context.Background())

	assert.Equal(t, []symbol.Canonical{
		symbol.Normalize("00700", symbol.MarketHK),
		symbol.Normalize("AAPL", symbol.MarketUS),
	}, assembler.calls)

	owners := map[string][]string{}
	ids := map[string]bool{}
	for _, r := range repo.state.Reports {
		owners[r.Canonical().Key()] = append(owners[r.Canonical().Key()], r.Owner)
		ids[r.ID] = true
	}
	assert.Equal(t, []string{"", "a@example.com", "b@example.com"}, owners["HK:00700"])
	assert.Equal(t, []string{"b@example.com"}, owners["US:AAPL"])
	assert.Len(t, ids, 4)
}

func TestAnalysisJob_StopsWhenContextIsCancelled(t *testing.T) {
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	state := entity.NewAppState()
	state.Watchlist = []entity.Stock{{Symbol: "AAPL", Market: symbol.MarketUS}}
	stateSvc, _ := newStateService(t, state)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assembler := &countingAssembler{now: fixedClock(now)}
	NewAnalysisJob(logger.NewNop(), stateSvc, assembler, nil, time.UTC, 0, fixedClock(now)).Run(ctx)

	assert.Empty(t, assembler.calls)
}
