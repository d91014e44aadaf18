package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

type yahooFinanceRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewYahooFinanceRepository creates a repository over the Yahoo chart API.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	return &yahooFinanceRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("yahoo_finance", log, upstreamTimeout(cfg, 10*time.Second), cfg.YahooFinance.MaxRequestPerMinute),
	}
}

func (r *yahooFinanceRepository) GetQuote(ctx context.Context, c symbol.Canonical) (float64, error) {
	result, err := r.chart(ctx, c, "1d", "1d")
	if err != nil {
		return 0, err
	}
	if p := result.Meta.RegularMarketPrice; p != nil && *p > 0 {
		return *p, nil
	}
	bars := toHistoryBars(result, time.UTC)
	if len(bars) == 0 {
		return 0, ErrEmptyResponse
	}
	return bars[len(bars)-1].Close, nil
}

func (r *yahooFinanceRepository) GetDailyBars(ctx context.Context, c symbol.Canonical, period string) ([]dto.HistoryBar, error) {
	result, err := r.chart(ctx, c, period, "1d")
	if err != nil {
		return nil, err
	}
	bars := toHistoryBars(result, exchangeLocation(result.Meta))
	if len(bars) == 0 {
		return nil, ErrEmptyResponse
	}
	return bars, nil
}

func (r *yahooFinanceRepository) GetIntradayBars(ctx context.Context, c symbol.Canonical, period, interval string) ([]dto.IntradayBar, error) {
	result, err := r.chart(ctx, c, period, interval)
	if err != nil {
		return nil, err
	}

	loc := exchangeLocation(result.Meta)
	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	bars := make([]dto.IntradayBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, dto.IntradayBar{Time: time.Unix(ts, 0).In(loc), Price: *closes[i]})
	}
	if len(bars) == 0 {
		return nil, ErrEmptyResponse
	}
	return bars, nil
}

func (r *yahooFinanceRepository) GetName(ctx context.Context, c symbol.Canonical) (string, error) {
	result, err := r.chart(ctx, c, "1d", "1d")
	if err != nil {
		return "", err
	}
	for _, name := range []string{result.Meta.ShortName, result.Meta.LongName} {
		if strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name), nil
		}
	}
	return "", ErrNotFound
}

func (r *yahooFinanceRepository) chart(ctx context.Context, c symbol.Canonical, period, interval string) (*dto.YahooChartResult, error) {
	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", interval)
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		strings.TrimRight(r.cfg.YahooFinance.BaseURL, "/"), url.PathEscape(c.YahooTicker()), params.Encode())

	body, err := r.http.sendRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp dto.YahooChartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrEmptyResponse
	}
	return &resp.Chart.Result[0], nil
}

func exchangeLocation(meta dto.YahooChartMeta) *time.Location {
	if meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", meta.GMTOffset)
}

func toHistoryBars(result *dto.YahooChartResult, loc *time.Location) []dto.HistoryBar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]
	value := func(series []*float64, i int) float64 {
		if i < len(series) && series[i] != nil {
			return *series[i]
		}
		return 0
	}

	bars := make([]dto.HistoryBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		t := time.Unix(ts, 0).In(loc)
		bars = append(bars, dto.HistoryBar{
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Open:   value(q.Open, i),
			High:   value(q.High, i),
			Low:    value(q.Low, i),
			Close:  *q.Close[i],
			Volume: value(q.Volume, i),
		})
	}
	return bars
}
