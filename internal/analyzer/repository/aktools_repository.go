package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

var spotTables = map[symbol.Market]string{
	symbol.MarketHK: "stock_hk_spot_em",
	symbol.MarketUS: "stock_us_spot_em",
	symbol.MarketSH: "stock_zh_a_spot_em",
	symbol.MarketSZ: "stock_zh_a_spot_em",
}

// SpotTableName returns the upstream table serving market. SH and SZ share one.
func SpotTableName(market symbol.Market) string {
	if table, ok := spotTables[market]; ok {
		return table
	}
	return market.String()
}

type akToolsRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewAKToolsRepository creates a repository over an AKTools deployment.
func NewAKToolsRepository(cfg *config.Config, log *logger.Logger) AKToolsRepository {
	return &akToolsRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("aktools", log, tableTimeout(cfg), cfg.AKTools.MaxRequestPerMinute),
	}
}

func (r *akToolsRepository) GetSpotTable(ctx context.Context, market symbol.Market) (dto.SpotTable, error) {
	table, ok := spotTables[market]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMarket, market)
	}

	rows, err := r.fetch(ctx, table, nil)
	if err != nil {
		return nil, err
	}

	spot := make(dto.SpotTable, len(rows))
	for _, row := range rows {
		code := row.String("代码")
		if code == "" {
			continue
		}
		price, ok := row.Float("最新价")
		if !ok || price <= 0 {
			continue
		}
		key := spotKey(code, market)
		spot[key] = dto.SpotQuote{Symbol: key, Name: row.String("名称"), Price: price}
	}

	r.log.DebugContext(ctx, "Loaded spot table",
		logger.StringField("table", table),
		logger.StringField("market", market.String()),
		logger.IntField("rows", len(spot)),
	)
	return spot, nil
}

func (r *akToolsRepository) GetDailyHistory(ctx context.Context, c symbol.Canonical, start, end time.Time) ([]dto.HistoryBar, error) {
	var (
		table  string
		params = url.Values{}
	)
	switch c.Market {
	case symbol.MarketHK:
		table = "stock_hk_daily"
		params.Set("symbol", c.Symbol)
		params.Set("adjust", "qfq")
	case symbol.MarketUS:
		table = "stock_us_hist"
		params.Set("symbol", c.Symbol)
		params.Set("period", "daily")
		params.Set("start_date", start.Format("20060102"))
		params.Set("end_date", end.Format("20060102"))
		params.Set("adjust", "qfq")
	case symbol.MarketSH, symbol.MarketSZ:
		table = "stock_zh_a_hist"
		params.Set("symbol", c.Symbol)
		params.Set("period", "daily")
		params.Set("start_date", start.Format("20060102"))
		params.Set("end_date", end.Format("20060102"))
		params.Set("adjust", "qfq")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMarket, c.Market)
	}

	rows, err := r.fetch(ctx, table, params)
	if err != nil {
		return nil, err
	}

	bars := make([]dto.HistoryBar, 0, len(rows))
	for _, row := range rows {
		date, err := parseTableDate(row.String("日期", "date"))
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		closePrice, ok := row.Float("收盘", "close")
		if !ok {
			continue
		}
		bar := dto.HistoryBar{Date: date, Close: closePrice}
		bar.Open, _ = row.Float("开盘", "open")
		bar.High, _ = row.Float("最高", "high")
		bar.Low, _ = row.Float("最低", "low")
		bar.Volume, _ = row.Float("成交量", "volume")
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (r *akToolsRepository) GetFundFlow(ctx context.Context, c symbol.Canonical) (*dto.FundFlow, error) {
	switch c.Market {
	case symbol.MarketHK:
		params := url.Values{}
		params.Set("indicator", "今日")
		rows, err := r.fetch(ctx, "stock_individual_fund_flow_rank", params)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if hkRowCode(row.String("代码")) != c.Symbol {
				continue
			}
			return &dto.FundFlow{
				MainNetInflow:  row.FloatPtr("今日主力净流入-净额", "主力净流入-净额", "主力净流入"),
				SuperLargeNet:  row.FloatPtr("今日超大单净流入-净额", "超大单净流入-净额", "超大单净流入"),
				LargeNet:       row.FloatPtr("今日大单净流入-净额", "大单净流入-净额", "大单净流入"),
				MediumNet:      row.FloatPtr("今日中单净流入-净额", "中单净流入-净额", "中单净流入"),
				SmallNet:       row.FloatPtr("今日小单净流入-净额", "小单净流入-净额", "小单净流入"),
				MainNetPercent: row.FloatPtr("今日主力净流入-净占比", "主力净流入-净占比", "主力净占比"),
			}, nil
		}
		return nil, ErrNotFound
	case symbol.MarketSH, symbol.MarketSZ:
		params := url.Values{}
		params.Set("stock", c.Symbol)
		params.Set("market", c.FundFlowMarket())
		rows, err := r.fetch(ctx, "stock_individual_fund_flow", params)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrNotFound
		}
		row := rows[len(rows)-1]
		return &dto.FundFlow{
			Date:           row.String("日期"),
			MainNetInflow:  row.FloatPtr("主力净流入-净额"),
			SuperLargeNet:  row.FloatPtr("超大单净流入-净额"),
			LargeNet:       row.FloatPtr("大单净流入-净额"),
			MediumNet:      row.FloatPtr("中单净流入-净额"),
			SmallNet:       row.FloatPtr("小单净流入-净额"),
			MainNetPercent: row.FloatPtr("主力净流入-净占比"),
			ClosePrice:     row.FloatPtr("收盘价"),
			ChangePercent:  row.FloatPtr("涨跌幅"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s has no fund flow table", ErrUnsupportedMarket, c.Market)
	}
}

func (r *akToolsRepository) fetch(ctx context.Context, table string, params url.Values) ([]dto.AKToolsRow, error) {
	if r.cfg.AKTools.BaseURL == "" {
		return nil, fmt.Errorf("aktools base url is not configured")
	}
	endpoint := strings.TrimRight(r.cfg.AKTools.BaseURL, "/") + "/api/public/" + table
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	body, err := r.http.sendRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []dto.AKToolsRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyResponse
	}
	return rows, nil
}

// spotKey maps a spot-table code to the canonical symbol. US codes carry an
// exchange prefix such as "105.AAPL".
func spotKey(code string, market symbol.Market) string {
	if market == symbol.MarketUS {
		if i := strings.LastIndex(code, "."); i >= 0 && i < len(code)-1 {
			code = code[i+1:]
		}
	}
	return symbol.Normalize(code, market).Symbol
}

// hkRowCode normalizes a code from a Hong Kong table. Codes longer than the
// Hong Kong width belong to another market and never match.
func hkRowCode(code string) string {
	code = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(code)), ".HK")
	if code == "" || len(code) > 5 {
		return ""
	}
	return symbol.Normalize(code, symbol.MarketHK).Symbol
}

func parseTableDate(raw string) (time.Time, error) {
	if len(raw) >= 10 {
		raw = raw[:10]
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse("20060102", raw)
}
