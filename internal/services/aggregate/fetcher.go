// Package aggregate merges the per-ticker ledger, series and posts lookups
// into one view-model.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// DefaultLookupTimeout bounds each sub-lookup.
const DefaultLookupTimeout = 10 * time.Second

// Fetcher implements interfaces.AggregateService.
type Fetcher struct {
	market  interfaces.MarketService
	posts   interfaces.PostsService
	timeout time.Duration
	logger  *common.Logger
}

var _ interfaces.AggregateService = (*Fetcher)(nil)

// NewFetcher creates a fetcher whose sub-lookups are each bounded by timeout.
func NewFetcher(market interfaces.MarketService, posts interfaces.PostsService, timeout time.Duration, logger *common.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Fetcher{
		market:  market,
		posts:   posts,
		timeout: timeout,
		logger:  logger,
	}
}

// FailedLedger is the ledger placeholder when the metadata lookup fails.
func FailedLedger(ticker string) *models.StockLedgerEntry {
	return &models.StockLedgerEntry{
		StockName:   ticker,
		Description: "Failed to fetch ticker info",
		MarketCap:   "N/A",
	}
}

// NoDataMessage is the banner for a series lookup that succeeded with no points.
func NoDataMessage(ticker string) string {
	return fmt.Sprintf("No price/volume data available for %s.", ticker)
}

// FailedDataMessage is the banner for a series lookup that failed.
func FailedDataMessage(ticker string) string {
	return fmt.Sprintf("Unable to load data for %s. Please try another ticker.", ticker)
}

// Fetch runs the three lookups concurrently. Each settles on its own; a
// failure or timeout in one replaces only its section with a placeholder.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) *models.AggregateResult {
	ticker = models.NormalizeTicker(ticker)
	result := &models.AggregateResult{Ticker: ticker}
	start := time.Now()

	// Members never return an error so one failure cannot cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		f.fetchLedger(ctx, ticker, result)
		return nil
	})
	g.Go(func() error {
		f.fetchSeries(ctx, ticker, result)
		return nil
	})
	g.Go(func() error {
		f.fetchPosts(ctx, ticker, result)
		return nil
	})
	_ = g.Wait()

	switch result.SeriesStatus {
	case models.LookupEmpty:
		result.Message = NoDataMessage(ticker)
	case models.LookupFailed, models.LookupTimeout:
		result.Message = FailedDataMessage(ticker)
	}

	f.logger.Info().
		Str("ticker", ticker).
		Str("ledger", string(result.LedgerStatus)).
		Str("series", string(result.SeriesStatus)).
		Str("posts", string(result.PostsStatus)).
		Dur("elapsed", time.Since(start)).
		Msg("Aggregate fetched")

	return result
}

func (f *Fetcher) fetchLedger(ctx context.Context, ticker string, result *models.AggregateResult) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	entry, err := f.market.GetLedger(ctx, ticker)
	if err != nil || entry == nil {
		f.logger.Warn().Str("ticker", ticker).Err(err).Msg("Ledger lookup failed")
		result.Ledger = FailedLedger(ticker)
		result.LedgerStatus = failureStatus(err)
		return
	}
	result.Ledger = entry
	result.LedgerStatus = models.LookupOK
}

func (f *Fetcher) fetchSeries(ctx context.Context, ticker string, result *models.AggregateResult) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	series, err := f.market.GetSeries(ctx, ticker)
	if err != nil {
		f.logger.Warn().Str("ticker", ticker).Err(err).Msg("Series lookup failed")
		result.Series = models.EmptySeries(ticker)
		result.SeriesStatus = failureStatus(err)
		return
	}
	if series.IsEmpty() {
		result.Series = models.EmptySeries(ticker)
		result.SeriesStatus = models.LookupEmpty
		return
	}
	result.Series = series
	result.SeriesStatus = models.LookupOK
}

func (f *Fetcher) fetchPosts(ctx context.Context, ticker string, result *models.AggregateResult) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	posts, err := f.posts.GetPosts(ctx, ticker)
	if err != nil {
		f.logger.Warn().Str("ticker", ticker).Err(err).Msg("Posts lookup failed")
		result.Posts = []models.PostRecord{}
		result.PostsStatus = failureStatus(err)
		return
	}
	if posts == nil {
		posts = []models.PostRecord{}
	}
	models.SortPostsByHours(posts)
	result.Posts = posts
	if len(posts) == 0 {
		result.PostsStatus = models.LookupEmpty
	} else {
		result.PostsStatus = models.LookupOK
	}
}

func failureStatus(err error) models.LookupStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.LookupTimeout
	}
	return models.LookupFailed
}
