// Package models defines the data types shared across the dashboard server
package models

import (
	"strings"

	"github.com/guregu/null/v6"
)

// TickerTapeItem is one row of the ticker tape snapshot.
// Price fields are nullable; an absent value serializes as JSON null.
type TickerTapeItem struct {
	ID          int        `json:"id"`
	Cashtag     string     `json:"cashtag"`
	PrevOpen    null.Float `json:"prev_open"`
	PrevEOD     null.Float `json:"prev_eod"`
	LatestPrice null.Float `json:"latest_price"`
	Change      null.Float `json:"chng"`
	Trend       []float64  `json:"trend"`
}

// StockLedgerEntry holds descriptive metadata for a ticker.
type StockLedgerEntry struct {
	StockName   string `json:"stockName"`
	Description string `json:"description"`
	MarketCap   string `json:"marketCap"`
}

// MarketSeries holds close prices (lineData) and volumes (barData) over the
// lookback window. Empty slices mean the vendor had no data for the ticker.
type MarketSeries struct {
	Ticker   string    `json:"ticker"`
	LineData []float64 `json:"lineData"`
	BarData  []float64 `json:"barData"`
}

// IsEmpty reports whether the series carries no price or no volume points.
func (s *MarketSeries) IsEmpty() bool {
	return s == nil || len(s.LineData) == 0 || len(s.BarData) == 0
}

// EmptySeries returns a series with non-nil empty slices so it encodes as [] rather than null.
func EmptySeries(ticker string) *MarketSeries {
	return &MarketSeries{
		Ticker:   ticker,
		LineData: []float64{},
		BarData:  []float64{},
	}
}

// NormalizeTicker trims whitespace, strips a leading $ cashtag sigil and upper-cases the symbol.
func NormalizeTicker(ticker string) string {
	t := strings.TrimSpace(ticker)
	t = strings.TrimPrefix(t, "$")
	return strings.ToUpper(strings.TrimSpace(t))
}
