package entity

import (
	"time"

	"golang-stock-watchlist/pkg/symbol"
)

// Stock is a watchlist entry. Symbol is always stored in canonical form.
type Stock struct {
	Symbol  string        `json:"symbol"`
	Market  symbol.Market `json:"market"`
	Name    string        `json:"name"`
	AddedAt time.Time     `json:"added_at"`
}

// Canonical returns the entry's normalized (symbol, market) pair.
func (s Stock) Canonical() symbol.Canonical {
	return symbol.Normalize(s.Symbol, s.Market)
}
