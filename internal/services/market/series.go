package market

import (
	"context"
	"fmt"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

// GetSeries returns close/volume series over the lookback window ending now.
// Empty slices mean no data; they are never nil.
func (s *Service) GetSeries(ctx context.Context, ticker string) (*models.MarketSeries, error) {
	if s.marketData == nil {
		return nil, ErrMarketDataMissing
	}

	end := s.now().UTC()
	start := end.Add(-s.lookback)

	series, err := s.marketData.GetSeries(ctx, ticker, start, end)
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Market data lookup failed")
		return nil, fmt.Errorf("failed to fetch series for %s: %w", ticker, err)
	}
	if series == nil {
		return models.EmptySeries(ticker), nil
	}

	series.Ticker = ticker
	if series.LineData == nil {
		series.LineData = []float64{}
	}
	if series.BarData == nil {
		series.BarData = []float64{}
	}

	s.logger.Debug().Str("ticker", ticker).Int("points", len(series.LineData)).Msg("Series fetched")
	return series, nil
}
