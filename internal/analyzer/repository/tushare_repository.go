package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"
)

type tushareRepository struct {
	cfg  *config.Config
	log  *logger.Logger
	http *httpClient
}

// NewTushareRepository creates a repository over the Tushare Pro API.
func NewTushareRepository(cfg *config.Config, log *logger.Logger) TushareRepository {
	return &tushareRepository{
		cfg:  cfg,
		log:  log,
		http: newHTTPClient("tushare", log, tableTimeout(cfg), cfg.Tushare.MaxRequestPerMinute),
	}
}

func (r *tushareRepository) GetReferenceTable(ctx context.Context, market symbol.Market) (dto.ReferenceTable, error) {
	if r.cfg.Tushare.Token == "" {
		return nil, fmt.Errorf("tushare token is not configured")
	}

	var req dto.TushareRequest
	switch market {
	case symbol.MarketHK:
		req = dto.TushareRequest{APIName: "hk_basic", Fields: "ts_code,name,enname"}
	case symbol.MarketUS:
		req = dto.TushareRequest{APIName: "us_basic", Fields: "ts_code,name,enname"}
	case symbol.MarketSH, symbol.MarketSZ:
		req = dto.TushareRequest{APIName: "stock_basic", Fields: "ts_code,symbol,name", Params: map[string]string{"list_status": "L"}}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMarket, market)
	}
	req.Token = r.cfg.Tushare.Token

	resp, err := r.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(resp.Data.Fields))
	for i, f := range resp.Data.Fields {
		index[f] = i
	}
	cell := func(item []interface{}, field string) string {
		i, ok := index[field]
		if !ok || i >= len(item) || item[i] == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprintf("%v", item[i]))
	}

	table := make(dto.ReferenceTable, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		tsCode := cell(item, "ts_code")
		name := cell(item, "name")
		if name == "" {
			name = cell(item, "enname")
		}
		if tsCode == "" || name == "" {
			continue
		}

		code := tsCode
		if market != symbol.MarketUS {
			var suffix string
			code, suffix, _ = strings.Cut(tsCode, ".")
			if market.IsMainland() && !strings.EqualFold(suffix, market.String()) {
				continue
			}
		}
		table[symbol.Normalize(code, market).Symbol] = name
	}

	if len(table) == 0 {
		return nil, ErrEmptyResponse
	}
	r.log.InfoContext(ctx, "Loaded reference table",
		logger.StringField("api", req.APIName),
		logger.StringField("market", market.String()),
		logger.IntField("rows", len(table)),
	)
	return table, nil
}

func (r *tushareRepository) execute(ctx context.Context, req dto.TushareRequest) (*dto.TushareResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tushare request: %w", err)
	}

	body, err := r.http.sendRequest(ctx, http.MethodPost, r.cfg.Tushare.BaseURL, bytes.NewReader(payload),
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, err
	}

	var resp dto.TushareResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tushare response: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("tushare %s failed: code=%d msg=%s", req.APIName, resp.Code, resp.Msg)
	}
	return &resp, nil
}
