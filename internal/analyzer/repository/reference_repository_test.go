package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tushareServer(t *testing.T, wantAPI, response string) string {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req dto.TushareRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, wantAPI, req.APIName)
		assert.Equal(t, "token", req.Token)
		w.Write([]byte(response))
	})
	return server.URL
}

func TestTushare_GetReferenceTable_MainlandFiltersExchange(t *testing.T) {
	url := tushareServer(t, "stock_basic", `{"code": 0, "msg": "", "data": {
		"fields": ["ts_code", "symbol", "name"],
		"items": [["600519.SH", "600519", "贵州茅台"], ["000001.SZ", "000001", "平安银行"], ["600000.SH", "600000", ""]]
	}}`)
	repo := NewTushareRepository(newTestConfig(url), logger.NewNop())

	table, err := repo.GetReferenceTable(context.Background(), symbol.MarketSH)
	require.NoError(t, err)
	assert.Equal(t, dto.ReferenceTable{"600519": "贵州茅台"}, table)
}

func TestTushare_GetReferenceTable_EnglishNameFallback(t *testing.T) {
	url := tushareServer(t, "us_basic", `{"code": 0, "data": {
		"fields": ["ts_code", "name", "enname"],
		"items": [["AAPL", null, "Apple Inc."], ["BRK.B", "伯克希尔", "Berkshire"]]
	}}`)
	repo := NewTushareRepository(newTestConfig(url), logger.NewNop())

	table, err := repo.GetReferenceTable(context.Background(), symbol.MarketUS)
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", table["AAPL"])
	assert.Equal(t, "伯克希尔", table["BRK.B"])
}

func TestTushare_GetReferenceTable_HKPadsCodes(t *testing.T) {
	url := tushareServer(t, "hk_basic", `{"code": 0, "data": {
		"fields": ["ts_code", "name"],
		"items": [["00700.HK", "腾讯控股"]]
	}}`)
	repo := NewTushareRepository(newTestConfig(url), logger.NewNop())

	table, err := repo.GetReferenceTable(context.Background(), symbol.MarketHK)
	require.NoError(t, err)
	assert.Equal(t, "腾讯控股", table["00700"])
}

func TestTushare_GetReferenceTable_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		url := tushareServer(t, "hk_basic", `{"code": 40203, "msg": "no permission"}`)
		repo := NewTushareRepository(newTestConfig(url), logger.NewNop())

		_, err := repo.GetReferenceTable(context.Background(), symbol.MarketHK)
		assert.ErrorContains(t, err, "no permission")
	})

	t.Run("empty table", func(t *testing.T) {
		url := tushareServer(t, "stock_basic", `{"code": 0, "data": {"fields": ["ts_code", "name"], "items": []}}`)
		repo := NewTushareRepository(newTestConfig(url), logger.NewNop())

		_, err := repo.GetReferenceTable(context.Background(), symbol.MarketSZ)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := newTestConfig("http://127.0.0.1:1")
		cfg.Tushare.Token = ""
		_, err := NewTushareRepository(cfg, logger.NewNop()).GetReferenceTable(context.Background(), symbol.MarketUS)
		assert.Error(t, err)
	})
}
