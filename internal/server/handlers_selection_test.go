package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/models"
	"github.com/erickalfaro/my-dashboard/internal/services/aggregate"
	"github.com/erickalfaro/my-dashboard/internal/services/live"
	"github.com/erickalfaro/my-dashboard/internal/services/market"
	"github.com/erickalfaro/my-dashboard/internal/services/quota"
)

func newAggregateApp(t *testing.T) *httptest.Server {
	t.Helper()
	a := newTestApp(t)
	a.MarketService = market.NewService(
		&mockReference{entry: &models.StockLedgerEntry{StockName: "Apple Inc.", Description: "Phones", MarketCap: "3T"}},
		&mockMarketData{series: &models.MarketSeries{Ticker: "AAPL", LineData: []float64{190}, BarData: []float64{1000}}},
		0, a.Logger)
	a.AggregateService = aggregate.NewFetcher(a.MarketService, a.PostsService, time.Second, a.Logger)
	a.LiveHub = live.NewHub(live.Deps{
		Quota:          a.QuotaService,
		Aggregate:      a.AggregateService,
		Summary:        a.SummaryService,
		Tape:           a.TapeService,
		DebounceWindow: time.Millisecond,
	}, a.Logger)
	srv := httptest.NewServer(newTestServer(a))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleAggregate_QuotaGate(t *testing.T) {
	a := newTestApp(t)
	a.MarketService = market.NewService(
		&mockReference{entry: &models.StockLedgerEntry{StockName: "Apple Inc."}},
		&mockMarketData{series: &models.MarketSeries{Ticker: "AAPL", LineData: []float64{190}, BarData: []float64{1000}}},
		0, a.Logger)
	a.AggregateService = aggregate.NewFetcher(a.MarketService, a.PostsService, time.Second, a.Logger)
	h := newTestServer(a)
	token := userToken(t, "u1")

	rr := doRequest(t, h, http.MethodGet, "/api/aggregate/AAPL", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/aggregate/$aapl", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	first := decode[aggregateResponse](t, rr)
	assert.True(t, first.Allowed)
	require.NotNil(t, first.Result)
	assert.Equal(t, "AAPL", first.Result.Ticker)
	assert.Equal(t, models.LookupOK, first.Result.LedgerStatus)
	assert.Equal(t, int64(1), first.Subscription.ClicksLeft.Int64)

	rr = doRequest(t, h, http.MethodGet, "/api/aggregate/AAPL", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(0), decode[aggregateResponse](t, rr).Subscription.ClicksLeft.Int64)

	rr = doRequest(t, h, http.MethodGet, "/api/aggregate/AAPL", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	denied := decode[aggregateResponse](t, rr)
	assert.False(t, denied.Allowed)
	assert.Equal(t, quota.ReasonExhausted, denied.Reason)
	assert.Nil(t, denied.Result)
}

func TestHandleLive_RequiresUser(t *testing.T) {
	srv := newAggregateApp(t)

	resp, err := http.Get(srv.URL + "/api/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandleLive_SelectOverWebsocket(t *testing.T) {
	srv := newAggregateApp(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live?access_token=" + userToken(t, "u1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(live.ClientMessage{Type: live.TypeSelect, Ticker: "AAPL"}))

	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg live.ServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != live.TypeAggregate {
			continue
		}
		require.NotNil(t, msg.Result)
		assert.Equal(t, "AAPL", msg.Result.Ticker)
		assert.Equal(t, "Apple Inc.", msg.Result.Ledger.StockName)
		return
	}
}
