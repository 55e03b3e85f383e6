package polygon

import "github.com/shopspring/decimal"

var (
	billion        = decimal.New(1, 9)
	million        = decimal.New(1, 6)
	hundredBillion = decimal.New(1, 11)
)

// FormatMarketCap renders a market capitalisation as "123B", "4.5B" or
// "678M". Zero or negative values render as "N/A".
func FormatMarketCap(marketCap float64) string {
	if marketCap <= 0 {
		return "N/A"
	}
	v := decimal.NewFromFloat(marketCap)
	switch {
	case v.GreaterThanOrEqual(hundredBillion):
		return v.Div(billion).StringFixed(0) + "B"
	case v.GreaterThanOrEqual(billion):
		return v.Div(billion).StringFixed(1) + "B"
	default:
		return v.Div(million).StringFixed(0) + "M"
	}
}
