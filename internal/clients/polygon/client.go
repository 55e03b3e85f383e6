// Package polygon provides a reference-data client over the Polygon.io REST API
package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	polygonrest "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	dashmodels "github.com/erickalfaro/my-dashboard/internal/models"
)

const DefaultTimeout = 10 * time.Second

// tickerDetailer is the reference endpoint the ledger lookup needs.
type tickerDetailer interface {
	GetTickerDetails(ctx context.Context, params *models.GetTickerDetailsParams, opts ...models.RequestOption) (*models.GetTickerDetailsResponse, error)
}

// Client implements interfaces.ReferenceDataClient
type Client struct {
	rest   tickerDetailer
	logger *common.Logger
}

var _ interfaces.ReferenceDataClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Polygon client
func NewClient(apiKey string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, interfaces.ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rest := polygonrest.NewWithClient(apiKey, &http.Client{Timeout: timeout})
	return newClient(rest, opts...), nil
}

func newClient(rest tickerDetailer, opts ...ClientOption) *Client {
	c := &Client{
		rest:   rest,
		logger: common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetTickerDetails returns the ledger entry for ticker. Unknown tickers
// yield an error matching interfaces.ErrNotFound.
func (c *Client) GetTickerDetails(ctx context.Context, ticker string) (*dashmodels.StockLedgerEntry, error) {
	resp, err := c.rest.GetTickerDetails(ctx, &models.GetTickerDetailsParams{Ticker: ticker})
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("polygon ticker %s: %w", ticker, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("polygon ticker %s: %w", ticker, err)
	}

	entry := &dashmodels.StockLedgerEntry{
		StockName:   resp.Results.Name,
		Description: resp.Results.Description,
		MarketCap:   FormatMarketCap(resp.Results.MarketCap),
	}
	if entry.StockName == "" {
		entry.StockName = "Unknown"
	}
	if entry.Description == "" {
		entry.Description = "No description available"
	}

	c.logger.Debug().Str("ticker", ticker).Str("name", entry.StockName).Msg("Polygon ticker details fetched")
	return entry, nil
}

// statusCode extracts the HTTP status from an SDK error, or 0.
func statusCode(err error) int {
	var pe *models.ErrorResponse
	if errors.As(err, &pe) && pe != nil {
		return pe.StatusCode
	}
	return 0
}
