package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/symbol"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedMarket = errors.New("unsupported market")
	ErrEmptyResponse     = errors.New("empty response")
)

// AKToolsRepository reads akshare tables through an AKTools HTTP bridge.
type AKToolsRepository interface {
	GetSpotTable(ctx context.Context, market symbol.Market) (dto.SpotTable, error)
	GetDailyHistory(ctx context.Context, c symbol.Canonical, start, end time.Time) ([]dto.HistoryBar, error)
	GetFundFlow(ctx context.Context, c symbol.Canonical) (*dto.FundFlow, error)
}

// YahooFinanceRepository reads the public chart API.
type YahooFinanceRepository interface {
	GetQuote(ctx context.Context, c symbol.Canonical) (float64, error)
	GetDailyBars(ctx context.Context, c symbol.Canonical, period string) ([]dto.HistoryBar, error)
	GetIntradayBars(ctx context.Context, c symbol.Canonical, period, interval string) ([]dto.IntradayBar, error)
	GetName(ctx context.Context, c symbol.Canonical) (string, error)
}

// TushareRepository downloads per-market reference tables.
type TushareRepository interface {
	GetReferenceTable(ctx context.Context, market symbol.Market) (dto.ReferenceTable, error)
}

// TencentRepository scrapes the Tencent quote and minute endpoints.
type TencentRepository interface {
	GetName(ctx context.Context, c symbol.Canonical) (string, error)
	GetMinuteBars(ctx context.Context, c symbol.Canonical) ([]dto.MinuteBar, error)
}

// SinaRepository scrapes the Sina quote endpoint.
type SinaRepository interface {
	GetName(ctx context.Context, c symbol.Canonical) (string, error)
}

// NewsSearchRepository finds recent articles for a free-text query.
type NewsSearchRepository interface {
	Name() string
	Search(ctx context.Context, query string) ([]dto.SearchResult, error)
}

// KeyedSearchRepository is a search backend whose credentials can be tried
// as independent sources, each with its own time budget.
type KeyedSearchRepository interface {
	NewsSearchRepository
	PerKey() []NewsSearchRepository
}

// ArticleRepository extracts readable text from an article page.
type ArticleRepository interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// LLMRepository generates text from a prompt with a named model.
type LLMRepository interface {
	Name() string
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

// StateRepository persists the whole application snapshot.
type StateRepository interface {
	Load(ctx context.Context) (*entity.AppState, error)
	Save(ctx context.Context, state *entity.AppState) error
}
