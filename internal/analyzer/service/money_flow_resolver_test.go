package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestVolumeDeltas(t *testing.T) {
	bars := []dto.HistoryBar{
		{Date: day(1), Volume: 100},
		{Date: day(2), Volume: 150},
		{Date: day(3), Volume: 90},
	}

	deltas := VolumeDeltas(bars)

	require.Len(t, deltas, 3)
	assert.Nil(t, deltas[0])
	require.NotNil(t, deltas[1])
	assert.InDelta(t, 50.0, *deltas[1], 1e-9)
	require.NotNil(t, deltas[2])
	assert.InDelta(t, -40.0, *deltas[2], 1e-9)
}

func TestVolumeDeltas_ZeroPreviousVolumeHasNoDelta(t *testing.T) {
	deltas := VolumeDeltas([]dto.HistoryBar{{Volume: 0}, {Volume: 500}})
	assert.Nil(t, deltas[1])
}

func TestSessionDirection(t *testing.T) {
	assert.Equal(t, DirectionUp, SessionDirection(dto.HistoryBar{Open: 10, Close: 11}))
	assert.Equal(t, DirectionDown, SessionDirection(dto.HistoryBar{Open: 10, Close: 9}))
	assert.Equal(t, DirectionFlat, SessionDirection(dto.HistoryBar{Open: 10, Close: 10}))
}

func TestSynthesizeMoneyFlow(t *testing.T) {
	c := symbol.Normalize("AAPL", symbol.MarketUS)
	text := SynthesizeMoneyFlow(c, []dto.HistoryBar{
		{Date: day(1), Open: 10, Close: 11, Volume: 1000000},
		{Date: day(2), Open: 11, Close: 10.5, Volume: 1500000},
	})

	assert.Contains(t, text, "美股 AAPL")
	assert.Contains(t, text, "- 2024-03-01: 成交量 1,000,000, 价格上涨 (收盘 11.00)")
	assert.Contains(t, text, "- 2024-03-02: 成交量 1,500,000 (较前日+50.0%), 价格下跌 (收盘 10.50)")
}

func TestMoneyFlowResolver_Fallbacks(t *testing.T) {
	c := symbol.Normalize("600519", symbol.MarketSH)
	bars := []dto.HistoryBar{{Date: day(1), Open: 1, Close: 2, Volume: 10}}

	t.Run("structured source wins", func(t *testing.T) {
		main := 2.5e8
		ak := &fakeAKTools{fundFlow: &dto.FundFlow{Date: "2024-03-01", MainNetInflow: &main}}
		r := NewMoneyFlowResolver(testConfig(), logger.NewNop(), ak)

		text := r.Resolve(context.Background(), c, bars)
		assert.Contains(t, text, "A股沪市 600519 资金流向 (2024-03-01)")
		assert.Contains(t, text, "主力净流入: 2.50亿")
		assert.Contains(t, text, "小单净流入: N/A")
	})

	t.Run("synthesis from history", func(t *testing.T) {
		r := NewMoneyFlowResolver(testConfig(), logger.NewNop(), &fakeAKTools{fundFlowErr: errUpstream})
		text := r.Resolve(context.Background(), c, bars)
		assert.Contains(t, text, "基于历史行情推算")
	})

	t.Run("apology without history", func(t *testing.T) {
		r := NewMoneyFlowResolver(testConfig(), logger.NewNop(), &fakeAKTools{fundFlowErr: errUpstream})
		assert.Equal(t, MoneyFlowUnavailableText, r.Resolve(context.Background(), c, nil))
	})
}

func TestFormatAmount(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	assert.Equal(t, "-1.20亿", formatAmount(v(-1.2e8)))
	assert.Equal(t, "3.40万", formatAmount(v(34000)))
	assert.Equal(t, "999", formatAmount(v(999)))
	assert.Equal(t, "N/A", formatAmount(nil))
}
