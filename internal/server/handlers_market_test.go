package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
	"github.com/erickalfaro/my-dashboard/internal/services/market"
	"github.com/erickalfaro/my-dashboard/internal/services/summary"
)

func TestHandleTicker(t *testing.T) {
	a := newTestApp(t)
	ref := &mockReference{entry: &models.StockLedgerEntry{StockName: "Tesla, Inc.", Description: "EVs", MarketCap: "812B"}}
	a.MarketService = market.NewService(ref, nil, 0, a.Logger)
	h := newTestServer(a)

	rr := doRequest(t, h, http.MethodGet, "/api/ticker/$tsla", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Tesla, Inc.", decode[models.StockLedgerEntry](t, rr).StockName)

	ref.entry, ref.err = nil, fmt.Errorf("vendor: %w", interfaces.ErrNotFound)
	rr = doRequest(t, h, http.MethodGet, "/api/ticker/NOPE", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, market.NotFoundLedger("NOPE"), ptr(decode[models.StockLedgerEntry](t, rr)))

	ref.err = errors.New("vendor 502")
	rr = doRequest(t, h, http.MethodGet, "/api/ticker/TSLA", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch data for TSLA", decode[ErrorResponse](t, rr).Error)

	rr = doRequest(t, h, http.MethodGet, "/api/ticker/", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid ticker", decode[ErrorResponse](t, rr).Error)
}

func ptr[T any](v T) *T { return &v }

func TestHandleTicker_MissingKey(t *testing.T) {
	h := newTestServer(newTestApp(t))

	rr := doRequest(t, h, http.MethodGet, "/api/ticker/TSLA", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Reference data API key is missing", decode[ErrorResponse](t, rr).Error)
}

func TestHandleSeries(t *testing.T) {
	a := newTestApp(t)
	md := &mockMarketData{series: &models.MarketSeries{Ticker: "TSLA", LineData: []float64{1, 2}, BarData: []float64{3, 4}}}
	a.MarketService = market.NewService(nil, md, 0, a.Logger)
	h := newTestServer(a)

	rr := doRequest(t, h, http.MethodGet, "/api/series/TSLA", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []float64{1, 2}, decode[models.MarketSeries](t, rr).LineData)

	md.series = models.EmptySeries("ZZZZ")
	rr = doRequest(t, h, http.MethodGet, "/api/series/ZZZZ", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ticker":"ZZZZ","lineData":[],"barData":[]}`, rr.Body.String())

	md.series, md.err = nil, errors.New("upstream 500")
	rr = doRequest(t, h, http.MethodGet, "/api/series/TSLA", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandleSeries_MissingCredentials(t *testing.T) {
	h := newTestServer(newTestApp(t))

	rr := doRequest(t, h, http.MethodGet, "/api/series/TSLA", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Market data API credentials are missing", decode[ErrorResponse](t, rr).Error)
}

func TestHandlePosts(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Storage.PostStore().SavePosts(context.Background(), "TSLA", []models.PostRecord{
		{Hours: 9, Text: "old"}, {Hours: 0.5, Text: "new"},
	}))
	h := newTestServer(a)

	rr := doRequest(t, h, http.MethodGet, "/api/posts/TSLA", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	posts := decode[[]models.PostRecord](t, rr)
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].Text)

	rr = doRequest(t, h, http.MethodGet, "/api/posts/NONE", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestHandleMockData(t *testing.T) {
	h := newTestServer(newTestApp(t))

	rr := doRequest(t, h, http.MethodGet, "/api/mockdata", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	items := decode[[]models.TickerTapeItem](t, rr)
	require.NotEmpty(t, items)

	rr = doRequest(t, h, http.MethodGet, "/api/mockdata?sort=cashtag&direction=asc", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sorted := decode[[]models.TickerTapeItem](t, rr)
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1].Cashtag, sorted[i].Cashtag)
	}

	rr = doRequest(t, h, http.MethodGet, "/api/mockdata?sort=volume", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSummary(t *testing.T) {
	a := newTestApp(t)
	h := newTestServer(a)

	rr := doRequest(t, h, http.MethodPost, "/api/summary", "", map[string]interface{}{"ticker": "TSLA"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing posts or ticker", decode[ErrorResponse](t, rr).Error)

	rr = doRequest(t, h, http.MethodPost, "/api/summary", "", map[string]interface{}{"posts": []models.PostRecord{{Text: "x"}}, "ticker": "TSLA"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	a.SummaryService = summary.NewGenerator(&mockCompletion{out: "➤ up"}, a.Logger)
	h = newTestServer(a)

	rr = doRequest(t, h, http.MethodPost, "/api/summary", "", map[string]interface{}{"posts": []models.PostRecord{{Text: "x"}}, "ticker": "TSLA"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "➤ up", decode[map[string]string](t, rr)["summary"])

	rr = doRequest(t, h, http.MethodPost, "/api/summary", "", `{"posts":[],"ticker":"TSLA"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "No posts available to summarize for TSLA.", decode[map[string]string](t, rr)["summary"])

	rr = doRequest(t, h, http.MethodPost, "/api/summary", "", `{bad`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
