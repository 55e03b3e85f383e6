package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/guregu/null/v6"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

var demoTrend = []float64{170, 171, 172, 172.5, 173, 170, 171, 172, 172.5, 173, 170, 171, 172, 172.5, 173}

// demoQuotes is cashtag, latest price, previous open.
var demoQuotes = []struct {
	cashtag string
	latest  float64
	open    float64
}{
	{"AAPL", 172.35, 170}, {"TSLA", 824.29, 800}, {"NVDA", 506.78, 490},
	{"GOOGL", 142.92, 140}, {"AMZN", 129.50, 125}, {"MSFT", 365.42, 360},
	{"META", 287.30, 280}, {"NFLX", 420.85, 415}, {"AMD", 108.62, 105},
	{"INTC", 39.75, 40}, {"BABA", 85.34, 84}, {"DIS", 91.22, 90},
	{"PYPL", 61.87, 60}, {"UBER", 47.95, 47}, {"SQ", 58.64, 58},
}

// DemoTape returns the demo ticker tape used to seed empty development stores.
func DemoTape() []models.TickerTapeItem {
	items := make([]models.TickerTapeItem, 0, len(demoQuotes))
	for i, q := range demoQuotes {
		chng := math.Round((q.latest-q.open)/q.open*10000) / 100
		trend := make([]float64, len(demoTrend))
		copy(trend, demoTrend)
		items = append(items, models.TickerTapeItem{
			ID:          i + 1,
			Cashtag:     q.cashtag,
			PrevOpen:    null.FloatFrom(q.open),
			PrevEOD:     null.FloatFrom(q.open),
			LatestPrice: null.FloatFrom(q.latest),
			Change:      null.FloatFrom(chng),
			Trend:       trend,
		})
	}
	return items
}

// SeedTape writes the demo tape when the store has none. It reports whether it wrote.
func SeedTape(ctx context.Context, logger *common.Logger, tape interfaces.TapeStore) (bool, error) {
	existing, err := tape.ListTape(ctx)
	if err != nil {
		return false, fmt.Errorf("check tape: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	items := DemoTape()
	if err := tape.ReplaceTape(ctx, items); err != nil {
		return false, fmt.Errorf("seed tape: %w", err)
	}
	logger.Info().Int("items", len(items)).Msg("Seeded demo ticker tape")
	return true, nil
}
