package dto

import "time"

// HistoryBar is one daily session.
type HistoryBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// History is the resolved recent price history of one stock.
type History struct {
	Bars []HistoryBar `json:"bars"`
	Text string       `json:"text"`
}

// IntradayPoint is one point of a chart series.
type IntradayPoint struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// SpotQuote is one row of a market-wide spot table.
type SpotQuote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

// FundFlow is a structured money-flow snapshot for one stock.
type FundFlow struct {
	Date           string   `json:"date,omitempty"`
	MainNetInflow  *float64 `json:"main_net_inflow"`
	SuperLargeNet  *float64 `json:"super_large_net"`
	LargeNet       *float64 `json:"large_net"`
	MediumNet      *float64 `json:"medium_net"`
	SmallNet       *float64 `json:"small_net"`
	MainNetPercent *float64 `json:"main_net_percent"`
	ClosePrice     *float64 `json:"close_price,omitempty"`
	ChangePercent  *float64 `json:"change_percent,omitempty"`
}

// IntradayBar is a raw intraday sample before labelling.
type IntradayBar struct {
	Time  time.Time
	Price float64
}

// MinuteBar is one sample from the minute endpoint, already labelled "HH:MM".
type MinuteBar struct {
	Label string
	Price float64
}

// ReferenceTable maps canonical symbols to display names for one market.
type ReferenceTable map[string]string

// SpotTable maps canonical symbols to spot quotes for one market.
type SpotTable map[string]SpotQuote
