// Package symbol normalizes user-entered tickers into one canonical form per
// market and derives the per-upstream variants from it.
package symbol

import (
	"errors"
	"fmt"
	"strings"
)

// Market identifies the exchange a symbol trades on.
type Market string

const (
	MarketUS Market = "US"
	MarketHK Market = "HK"
	MarketSH Market = "SH"
	MarketSZ Market = "SZ"
)

// hkWidth is the canonical width of a Hong Kong code.
const hkWidth = 5

var ErrUnknownMarket = errors.New("unknown market")

// Markets lists every supported market.
var Markets = []Market{MarketUS, MarketHK, MarketSH, MarketSZ}

// ParseMarket accepts any casing and surrounding whitespace.
func ParseMarket(raw string) (Market, error) {
	m := Market(strings.ToUpper(strings.TrimSpace(raw)))
	switch m {
	case MarketUS, MarketHK, MarketSH, MarketSZ:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMarket, raw)
}

func (m Market) String() string {
	return string(m)
}

// IsMainland reports whether m is a Shanghai or Shenzhen A-share market.
func (m Market) IsMainland() bool {
	return m == MarketSH || m == MarketSZ
}

// Canonical is the normalized (symbol, market) pair used for storage, equality and cache keys.
type Canonical struct {
	Symbol string `json:"symbol"`
	Market Market `json:"market"`
}

// Normalize is pure and idempotent.
func Normalize(raw string, market Market) Canonical {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if market == MarketHK {
		s = strings.TrimSuffix(s, ".HK")
		s = padLeft(strings.TrimLeft(s, "0"), hkWidth)
	}
	return Canonical{Symbol: s, Market: market}
}

// Key returns "<MARKET>:<SYMBOL>".
func (c Canonical) Key() string {
	return string(c.Market) + ":" + c.Symbol
}

func (c Canonical) String() string {
	return c.Key()
}

// YahooTicker is the ticker form for the chart API: HK codes use 4 digits.
func (c Canonical) YahooTicker() string {
	switch c.Market {
	case MarketHK:
		return padLeft(strings.TrimLeft(c.Symbol, "0"), 4) + ".HK"
	case MarketSH:
		return c.Symbol + ".SS"
	case MarketSZ:
		return c.Symbol + ".SZ"
	default:
		return c.Symbol
	}
}

// TencentCode is the code used by the Tencent quote and minute endpoints.
func (c Canonical) TencentCode() string {
	switch c.Market {
	case MarketHK:
		return "hk" + c.Symbol
	case MarketSH:
		return "sh" + c.Symbol
	case MarketSZ:
		return "sz" + c.Symbol
	default:
		return "us" + c.Symbol
	}
}

// SinaCode is the code used by the Sina quote endpoint. Empty for A-shares.
func (c Canonical) SinaCode() string {
	switch c.Market {
	case MarketHK:
		return "hk" + c.Symbol
	case MarketUS:
		return "gb_" + strings.ToLower(c.Symbol)
	default:
		return ""
	}
}

// TushareCode is the ts_code form for A-shares, the bare symbol otherwise.
func (c Canonical) TushareCode() string {
	if c.Market.IsMainland() {
		return c.Symbol + "." + string(c.Market)
	}
	return c.Symbol
}

// FundFlowMarket is the lowercase exchange tag used by the A-share fund flow table.
func (c Canonical) FundFlowMarket() string {
	return strings.ToLower(string(c.Market))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
