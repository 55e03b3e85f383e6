package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// --- Mocks ---

type mockMarket struct {
	mu          sync.Mutex
	ledger      *models.StockLedgerEntry
	ledgerErr   error
	series      *models.MarketSeries
	seriesErr   error
	seriesDelay time.Duration
	tickers     []string
}

func (m *mockMarket) record(ticker string) {
	m.mu.Lock()
	m.tickers = append(m.tickers, ticker)
	m.mu.Unlock()
}

func (m *mockMarket) GetLedger(_ context.Context, ticker string) (*models.StockLedgerEntry, error) {
	m.record(ticker)
	return m.ledger, m.ledgerErr
}

func (m *mockMarket) GetSeries(ctx context.Context, ticker string) (*models.MarketSeries, error) {
	m.record(ticker)
	if m.seriesDelay > 0 {
		select {
		case <-time.After(m.seriesDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.series, m.seriesErr
}

type mockPosts struct {
	posts []models.PostRecord
	err   error
}

func (m *mockPosts) GetPosts(_ context.Context, _ string) ([]models.PostRecord, error) {
	return m.posts, m.err
}

func okMarket() *mockMarket {
	return &mockMarket{
		ledger: &models.StockLedgerEntry{StockName: "Tesla", Description: "EVs", MarketCap: "812B"},
		series: &models.MarketSeries{Ticker: "TSLA", LineData: []float64{1, 2}, BarData: []float64{10, 20}},
	}
}

// --- Tests ---

func TestFetch_AllSucceed(t *testing.T) {
	posts := &mockPosts{posts: []models.PostRecord{{Hours: 4, Text: "b"}, {Hours: 1, Text: "a"}}}
	f := NewFetcher(okMarket(), posts, time.Second, common.NewSilentLogger())

	res := f.Fetch(context.Background(), "TSLA")
	assert.Equal(t, models.LookupOK, res.LedgerStatus)
	assert.Equal(t, models.LookupOK, res.SeriesStatus)
	assert.Equal(t, models.LookupOK, res.PostsStatus)
	assert.Empty(t, res.Message)
	assert.Equal(t, "Tesla", res.Ledger.StockName)
	require.Len(t, res.Posts, 2)
	assert.Equal(t, "a", res.Posts[0].Text)
}

func TestFetch_StripsSigil(t *testing.T) {
	m := okMarket()
	f := NewFetcher(m, &mockPosts{}, time.Second, common.NewSilentLogger())

	res := f.Fetch(context.Background(), "$tsla")
	assert.Equal(t, "TSLA", res.Ticker)
	for _, got := range m.tickers {
		assert.Equal(t, "TSLA", got)
	}
}

func TestFetch_PartialFailureIsIndependent(t *testing.T) {
	m := okMarket()
	m.ledgerErr = errors.New("reference vendor down")
	posts := &mockPosts{posts: []models.PostRecord{{Hours: 1, Text: "x"}}}
	f := NewFetcher(m, posts, time.Second, common.NewSilentLogger())

	res := f.Fetch(context.Background(), "TSLA")
	assert.Equal(t, models.LookupFailed, res.LedgerStatus)
	assert.Equal(t, FailedLedger("TSLA"), res.Ledger)
	// Other sections unaffected
	assert.Equal(t, models.LookupOK, res.SeriesStatus)
	assert.Equal(t, []float64{1, 2}, res.Series.LineData)
	assert.Equal(t, models.LookupOK, res.PostsStatus)
	assert.Len(t, res.Posts, 1)
}

func TestFetch_PostsFailureKeepsOthers(t *testing.T) {
	f := NewFetcher(okMarket(), &mockPosts{err: errors.New("db")}, time.Second, common.NewSilentLogger())

	res := f.Fetch(context.Background(), "TSLA")
	assert.Equal(t, models.LookupFailed, res.PostsStatus)
	assert.NotNil(t, res.Posts)
	assert.Empty(t, res.Posts)
	assert.Equal(t, models.LookupOK, res.LedgerStatus)
}

func TestFetch_EmptySeriesMessage(t *testing.T) {
	m := okMarket()
	m.series = models.EmptySeries("TSLA")
	f := NewFetcher(m, &mockPosts{}, time.Second, common.NewSilentLogger())

	res := f.Fetch(context.Background(), "TSLA")
	assert.Equal(t, models.LookupEmpty, res.SeriesStatus)
	assert.Equal(t, "No price/volume data available for TSLA.", res.Message)
	assert.NotNil(t, res.Series.LineData)
}

func TestFetch_SeriesErrorMessageDistinct(t *testing.T) {
	m := okMarket()
	m.seriesErr = errors.New("upstream 500")
	f := NewFetcher(m, &mockPosts{}, time.Second, common.NewSilentLogger())

	res := f.Fetch(context.Background(), "TSLA")
	assert.Equal(t, models.LookupFailed, res.SeriesStatus)
	assert.NotEqual(t, NoDataMessage("TSLA"), res.Message)
	assert.Equal(t, FailedDataMessage("TSLA"), res.Message)
	assert.True(t, res.Series.IsEmpty())
}

func TestFetch_TimeoutOnlyAffectsSlowLookup(t *testing.T) {
	m := okMarket()
	m.seriesDelay = time.Second
	f := NewFetcher(m, &mockPosts{posts: []models.PostRecord{{Hours: 1}}}, 30*time.Millisecond, common.NewSilentLogger())

	start := time.Now()
	res := f.Fetch(context.Background(), "TSLA")
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, models.LookupTimeout, res.SeriesStatus)
	assert.Equal(t, models.LookupOK, res.LedgerStatus)
	assert.Equal(t, models.LookupOK, res.PostsStatus)
}

func TestFetch_SeriesShapeIdempotent(t *testing.T) {
	f := NewFetcher(okMarket(), &mockPosts{}, time.Second, common.NewSilentLogger())

	a := f.Fetch(context.Background(), "TSLA")
	b := f.Fetch(context.Background(), "TSLA")
	assert.Equal(t, a.Series, b.Series)
	assert.Equal(t, len(a.Series.LineData), len(a.Series.BarData))
}
