package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/symbol"
)

var errUpstream = errors.New("upstream unavailable")

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.NameTTL = time.Hour
	cfg.Cache.ReferenceTableTTL = 24 * time.Hour
	cfg.Cache.SpotTableTTL = time.Minute
	cfg.Analysis.HistorySessions = 5
	cfg.Article.MinContentLength = 50
	cfg.Article.MaxContentLength = 1000
	cfg.LLM.Models = []config.ModelRef{
		{Provider: "fake", Model: "primary"},
		{Provider: "fake", Model: "secondary"},
	}
	return cfg
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type fakeYahoo struct {
	quote    float64
	quoteErr error
	bars     []dto.HistoryBar
	barsErr  error
	intraday map[string][]dto.IntradayBar
	name     string
	nameErr  error
}

func (f *fakeYahoo) GetQuote(ctx context.Context, c symbol.Canonical) (float64, error) {
	return f.quote, f.quoteErr
}

func (f *fakeYahoo) GetDailyBars(ctx context.Context, c symbol.Canonical, period string) ([]dto.HistoryBar, error) {
	return f.bars, f.barsErr
}

func (f *fakeYahoo) GetIntradayBars(ctx context.Context, c symbol.Canonical, period, interval string) ([]dto.IntradayBar, error) {
	bars, ok := f.intraday[period+"/"+interval]
	if !ok {
		return nil, errUpstream
	}
	return bars, nil
}

func (f *fakeYahoo) GetName(ctx context.Context, c symbol.Canonical) (string, error) {
	return f.name, f.nameErr
}

type fakeAKTools struct {
	spot        dto.SpotTable
	spotErr     error
	spotCalls   int
	history     []dto.HistoryBar
	historyErr  error
	fundFlow    *dto.FundFlow
	fundFlowErr error
}

func (f *fakeAKTools) GetSpotTable(ctx context.Context, market symbol.Market) (dto.SpotTable, error) {
	f.spotCalls++
	return f.spot, f.spotErr
}

func (f *fakeAKTools) GetDailyHistory(ctx context.Context, c symbol.Canonical, start, end time.Time) ([]dto.HistoryBar, error) {
	return f.history, f.historyErr
}

func (f *fakeAKTools) GetFundFlow(ctx context.Context, c symbol.Canonical) (*dto.FundFlow, error) {
	return f.fundFlow, f.fundFlowErr
}

type fakeNameSource struct {
	name  string
	err   error
	calls int
}

func (f *fakeNameSource) GetName(ctx context.Context, c symbol.Canonical) (string, error) {
	f.calls++
	return f.name, f.err
}

type fakeTencent struct {
	fakeNameSource
	minutes    []dto.MinuteBar
	minutesErr error
}

func (f *fakeTencent) GetMinuteBars(ctx context.Context, c symbol.Canonical) ([]dto.MinuteBar, error) {
	return f.minutes, f.minutesErr
}

// fakeLLM answers per model; a missing model fails.
type fakeLLM struct {
	mu        sync.Mutex
	responses map[string]string
	prompts   []string
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	text, ok := f.responses[model]
	if !ok {
		return "", errUpstream
	}
	return text, nil
}

type fakeSearch struct {
	name    string
	results []dto.SearchResult
	err     error
	calls   int
}

func (f *fakeSearch) Name() string { return f.name }

func (f *fakeSearch) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	f.calls++
	return f.results, f.err
}

type fakeStateRepo struct {
	mu      sync.Mutex
	state   *entity.AppState
	saves   int
	saveErr error
}

func (f *fakeStateRepo) Load(ctx context.Context) (*entity.AppState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return entity.NewAppState(), nil
	}
	return f.state.Clone(), nil
}

func (f *fakeStateRepo) Save(ctx context.Context, state *entity.AppState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = state.Clone()
	return nil
}

type fakeNameResolver struct {
	names map[string]string
}

func (f *fakeNameResolver) Resolve(ctx context.Context, c symbol.Canonical) string {
	if name, ok := f.names[c.Key()]; ok {
		return name
	}
	return c.Symbol
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SendMessage(_ context.Context, text string) error {
	f.messages = append(f.messages, text)
	return nil
}
