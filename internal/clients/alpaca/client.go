// Package alpaca provides a price/volume series client over the Alpaca market data API
package alpaca

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

const DefaultBarLimit = 168 // 7 days of hourly bars

// barsGetter is the part of the SDK client the series lookup needs.
type barsGetter interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Client implements interfaces.MarketDataClient
type Client struct {
	bars   barsGetter
	limit  int
	feed   marketdata.Feed
	logger *common.Logger
}

var _ interfaces.MarketDataClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBarLimit caps the number of bars per request
func WithBarLimit(limit int) ClientOption {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithFeed selects the data feed, e.g. "iex" or "sip"
func WithFeed(feed string) ClientOption {
	return func(c *Client) {
		c.feed = marketdata.Feed(feed)
	}
}

// NewClient creates a new Alpaca market data client. baseURL may be empty.
func NewClient(keyID, secretKey, baseURL string, opts ...ClientOption) (*Client, error) {
	if keyID == "" || secretKey == "" {
		return nil, interfaces.ErrNotConfigured
	}
	clientOpts := marketdata.ClientOpts{
		APIKey:    keyID,
		APISecret: secretKey,
	}
	if baseURL != "" {
		clientOpts.BaseURL = baseURL
	}
	return newClient(marketdata.NewClient(clientOpts), opts...), nil
}

func newClient(bars barsGetter, opts ...ClientOption) *Client {
	c := &Client{
		bars:   bars,
		limit:  DefaultBarLimit,
		logger: common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSeries returns hourly close and volume series for [start, end). A
// symbol the vendor does not know yields an empty series, not an error.
func (c *Client) GetSeries(ctx context.Context, ticker string, start, end time.Time) (*models.MarketSeries, error) {
	req := marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneHour,
		Adjustment: marketdata.Raw,
		Start:      start,
		End:        end,
		TotalLimit: c.limit,
		Feed:       c.feed,
	}

	type result struct {
		bars []marketdata.Bar
		err  error
	}
	// The SDK call takes no context; run it aside so cancellation still returns promptly.
	done := make(chan result, 1)
	go func() {
		bars, err := c.bars.GetBars(ticker, req)
		done <- result{bars: bars, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if isUnknownSymbol(res.err) {
			c.logger.Debug().Str("ticker", ticker).Err(res.err).Msg("Alpaca does not know symbol")
			return models.EmptySeries(ticker), nil
		}
		return nil, fmt.Errorf("alpaca bars for %s: %w", ticker, res.err)
	}

	series := models.EmptySeries(ticker)
	for _, b := range res.bars {
		series.LineData = append(series.LineData, b.Close)
		series.BarData = append(series.BarData, float64(b.Volume))
	}

	c.logger.Debug().Str("ticker", ticker).Int("bars", len(res.bars)).Msg("Alpaca series fetched")
	return series, nil
}

func isUnknownSymbol(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid symbol") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "status code 404")
}
