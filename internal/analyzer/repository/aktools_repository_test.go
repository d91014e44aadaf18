package repository

import (
	"context"
	"net/http"
	"testing"
	"time"

	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAKTools_GetSpotTable_US(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/stock_us_spot_em", r.URL.Path)
		w.Write([]byte(`[
			{"代码": "105.AAPL", "名称": "苹果", "最新价": 189.5},
			{"代码": "106.BABA", "名称": "阿里巴巴", "最新价": "80.10"},
			{"代码": "105.DEAD", "名称": "停牌", "最新价": 0},
			{"名称": "无代码", "最新价": 10}
		]`))
	})
	repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

	table, err := repo.GetSpotTable(context.Background(), symbol.MarketUS)
	require.NoError(t, err)

	assert.Len(t, table, 2)
	assert.Equal(t, 189.5, table["AAPL"].Price)
	assert.Equal(t, "苹果", table["AAPL"].Name)
	assert.Equal(t, 80.10, table["BABA"].Price)
	assert.NotContains(t, table, "DEAD")
}

func TestAKTools_GetSpotTable_HKCanonicalKeys(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/stock_hk_spot_em", r.URL.Path)
		w.Write([]byte(`[{"代码": "700", "名称": "腾讯控股", "最新价": 320.4}]`))
	})
	repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

	table, err := repo.GetSpotTable(context.Background(), symbol.MarketHK)
	require.NoError(t, err)
	assert.Equal(t, 320.4, table["00700"].Price)
}

func TestAKTools_GetDailyHistory_FiltersAndSorts(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/stock_us_hist", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "20240301", r.URL.Query().Get("start_date"))
		assert.Equal(t, "20240305", r.URL.Query().Get("end_date"))
		w.Write([]byte(`[
			{"日期": "2024-02-28", "开盘": 1, "收盘": 1, "最高": 1, "最低": 1, "成交量": 1},
			{"日期": "2024-03-04T00:00:00.000", "开盘": 10.5, "收盘": 11, "最高": 11.2, "最低": 10.1, "成交量": 1500},
			{"日期": "2024-03-01", "开盘": 10, "收盘": 10.5, "最高": 10.8, "最低": 9.9, "成交量": 1000},
			{"日期": "2024-03-06", "开盘": 1, "收盘": 1, "最高": 1, "最低": 1, "成交量": 1},
			{"日期": "bad", "收盘": 1}
		]`))
	})
	repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	bars, err := repo.GetDailyHistory(context.Background(), symbol.Normalize("aapl", symbol.MarketUS), start, end)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, start, bars[0].Date)
	assert.Equal(t, 10.5, bars[0].Close)
	assert.Equal(t, 1000.0, bars[0].Volume)
	assert.Equal(t, 11.0, bars[1].Close)
	assert.Equal(t, 11.2, bars[1].High)
}

func TestAKTools_GetFundFlow_MainlandUsesLatestRow(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/stock_individual_fund_flow", r.URL.Path)
		assert.Equal(t, "600519", r.URL.Query().Get("stock"))
		assert.Equal(t, "sh", r.URL.Query().Get("market"))
		w.Write([]byte(`[
			{"日期": "2024-03-01", "主力净流入-净额": 100, "收盘价": 1700},
			{"日期": "2024-03-04", "主力净流入-净额": -2.5e8, "主力净流入-净占比": -3.2, "收盘价": 1688.8, "涨跌幅": -0.7}
		]`))
	})
	repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

	flow, err := repo.GetFundFlow(context.Background(), symbol.Normalize("600519", symbol.MarketSH))
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", flow.Date)
	require.NotNil(t, flow.MainNetInflow)
	assert.Equal(t, -2.5e8, *flow.MainNetInflow)
	require.NotNil(t, flow.ClosePrice)
	assert.Equal(t, 1688.8, *flow.ClosePrice)
	assert.Nil(t, flow.SmallNet)
}

func TestAKTools_GetFundFlow_HKRankMiss(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "今日", r.URL.Query().Get("indicator"))
		w.Write([]byte(`[{"代码": "09988", "今日主力净流入-净额": 1}]`))
	})
	repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

	_, err := repo.GetFundFlow(context.Background(), symbol.Normalize("700", symbol.MarketHK))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAKTools_GetFundFlow_HKExactCodeMatch(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"代码": "000001", "名称": "平安银行", "今日主力净流入-净额": 123456789},
			{"代码": "1", "名称": "长和", "今日主力净流入-净额": -5000000}
		]`))
	})
	repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

	flow, err := repo.GetFundFlow(context.Background(), symbol.Normalize("00001", symbol.MarketHK))
	require.NoError(t, err)
	require.NotNil(t, flow.MainNetInflow)
	assert.Equal(t, -5e6, *flow.MainNetInflow)
}

func TestHKRowCode(t *testing.T) {
	assert.Equal(t, "00700", hkRowCode("700"))
	assert.Equal(t, "00700", hkRowCode(" 00700.hk "))
	assert.Empty(t, hkRowCode("000001"))
	assert.Empty(t, hkRowCode(""))
}

func TestAKTools_GetFundFlow_USUnsupported(t *testing.T) {
	repo := NewAKToolsRepository(newTestConfig("http://127.0.0.1:1"), logger.NewNop())

	_, err := repo.GetFundFlow(context.Background(), symbol.Normalize("AAPL", symbol.MarketUS))
	assert.ErrorIs(t, err, ErrUnsupportedMarket)
}

func TestAKTools_EmptyAndFailedResponses(t *testing.T) {
	t.Run("empty rows", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})
		repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

		_, err := repo.GetSpotTable(context.Background(), symbol.MarketSH)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("server error", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		repo := NewAKToolsRepository(newTestConfig(server.URL), logger.NewNop())

		_, err := repo.GetSpotTable(context.Background(), symbol.MarketSZ)
		assert.ErrorContains(t, err, "status 500")
	})
}

func TestSpotKey(t *testing.T) {
	assert.Equal(t, "AAPL", spotKey("105.aapl", symbol.MarketUS))
	assert.Equal(t, "00005", spotKey("5", symbol.MarketHK))
	assert.Equal(t, "600519", spotKey("600519", symbol.MarketSH))
}

func TestSpotTableName(t *testing.T) {
	assert.Equal(t, SpotTableName(symbol.MarketSH), SpotTableName(symbol.MarketSZ))
	assert.Equal(t, "stock_hk_spot_em", SpotTableName(symbol.MarketHK))
	assert.Equal(t, "XX", SpotTableName(symbol.Market("XX")))
}
