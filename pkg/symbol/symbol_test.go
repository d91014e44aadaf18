package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw    string
		market Market
		want   string
	}{
		{"700", MarketHK, "00700"},
		{"0700", MarketHK, "00700"},
		{"00700", MarketHK, "00700"},
		{"0700.hk", MarketHK, "00700"},
		{" 9988 ", MarketHK, "09988"},
		{"aapl", MarketUS, "AAPL"},
		{" brk.b ", MarketUS, "BRK.B"},
		{"600519", MarketSH, "600519"},
		{"000001", MarketSZ, "000001"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Normalize(tt.raw, tt.market)
			assert.Equal(t, tt.want, got.Symbol)
			assert.Equal(t, tt.market, got.Market)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []struct {
		raw    string
		market Market
	}{
		{"7", MarketHK}, {"00700", MarketHK}, {"12345", MarketHK}, {"0", MarketHK},
		{"msft", MarketUS}, {"600519", MarketSH}, {"000001", MarketSZ},
	}
	for _, in := range inputs {
		once := Normalize(in.raw, in.market)
		twice := Normalize(once.Symbol, once.Market)
		assert.Equal(t, once, twice, in.raw)
	}
}

func TestCanonical_Equality(t *testing.T) {
	assert.Equal(t, Normalize("700", MarketHK), Normalize("00700", MarketHK))
	assert.NotEqual(t, Normalize("000001", MarketSH), Normalize("000001", MarketSZ))
	assert.Equal(t, "HK:00700", Normalize("700", MarketHK).Key())
}

func TestAdapterForms(t *testing.T) {
	hk := Normalize("700", MarketHK)
	assert.Equal(t, "0700.HK", hk.YahooTicker())
	assert.Equal(t, "hk00700", hk.TencentCode())
	assert.Equal(t, "hk00700", hk.SinaCode())
	assert.Equal(t, "00700", hk.TushareCode())

	us := Normalize("aapl", MarketUS)
	assert.Equal(t, "AAPL", us.YahooTicker())
	assert.Equal(t, "usAAPL", us.TencentCode())
	assert.Equal(t, "gb_aapl", us.SinaCode())

	sh := Normalize("600519", MarketSH)
	assert.Equal(t, "600519.SS", sh.YahooTicker())
	assert.Equal(t, "sh600519", sh.TencentCode())
	assert.Empty(t, sh.SinaCode())
	assert.Equal(t, "600519.SH", sh.TushareCode())
	assert.Equal(t, "sh", sh.FundFlowMarket())

	sz := Normalize("000001", MarketSZ)
	assert.Equal(t, "000001.SZ", sz.YahooTicker())
	assert.Equal(t, "sz000001", sz.TencentCode())

	big := Normalize("09988", MarketHK)
	assert.Equal(t, "9988.HK", big.YahooTicker())
}

func TestParseMarket(t *testing.T) {
	m, err := ParseMarket(" hk ")
	require.NoError(t, err)
	assert.Equal(t, MarketHK, m)

	_, err = ParseMarket("LSE")
	assert.ErrorIs(t, err, ErrUnknownMarket)
}
