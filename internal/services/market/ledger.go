// Package market serves ticker metadata and price/volume series
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// Errors returned when a vendor client was not configured.
var (
	ErrReferenceKeyMissing = fmt.Errorf("reference data API key is missing: %w", interfaces.ErrNotConfigured)
	ErrMarketDataMissing   = fmt.Errorf("market data API credentials are missing: %w", interfaces.ErrNotConfigured)
)

// DefaultLookback is the series window.
const DefaultLookback = 7 * 24 * time.Hour

// Service implements interfaces.MarketService.
type Service struct {
	reference  interfaces.ReferenceDataClient
	marketData interfaces.MarketDataClient
	lookback   time.Duration
	logger     *common.Logger
	now        func() time.Time // injectable clock for testing
}

var _ interfaces.MarketService = (*Service)(nil)

// NewService creates a market service. Either client may be nil when its
// credentials are not configured; the matching lookups then fail with
// an error matching interfaces.ErrNotConfigured.
func NewService(reference interfaces.ReferenceDataClient, marketData interfaces.MarketDataClient, lookback time.Duration, logger *common.Logger) *Service {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Service{
		reference:  reference,
		marketData: marketData,
		lookback:   lookback,
		logger:     logger,
		now:        time.Now,
	}
}

// NotFoundLedger is the placeholder for tickers the reference vendor does not know.
func NotFoundLedger(ticker string) *models.StockLedgerEntry {
	return &models.StockLedgerEntry{
		StockName:   ticker,
		Description: "Ticker not found in reference database",
		MarketCap:   "N/A",
	}
}

// GetLedger returns ticker metadata. A ticker unknown to the vendor is not an
// error: it yields the NotFoundLedger placeholder.
func (s *Service) GetLedger(ctx context.Context, ticker string) (*models.StockLedgerEntry, error) {
	if s.reference == nil {
		return nil, ErrReferenceKeyMissing
	}

	entry, err := s.reference.GetTickerDetails(ctx, ticker)
	if errors.Is(err, interfaces.ErrNotFound) {
		s.logger.Info().Str("ticker", ticker).Msg("Ticker not found in reference data")
		return NotFoundLedger(ticker), nil
	}
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Reference data lookup failed")
		return nil, fmt.Errorf("failed to fetch data for %s: %w", ticker, err)
	}
	return entry, nil
}
