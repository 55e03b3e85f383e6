package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/app"
	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

const testJWTSecret = "server-test-secret"

// --- Mocks ---

type mockReference struct {
	entry *models.StockLedgerEntry
	err   error
}

func (m *mockReference) GetTickerDetails(context.Context, string) (*models.StockLedgerEntry, error) {
	return m.entry, m.err
}

type mockMarketData struct {
	series *models.MarketSeries
	err    error
}

func (m *mockMarketData) GetSeries(context.Context, string, time.Time, time.Time) (*models.MarketSeries, error) {
	return m.series, m.err
}

type mockCompletion struct {
	out string
}

func (m *mockCompletion) Complete(context.Context, string, string) (string, error) {
	return m.out, nil
}

type mockPayments struct {
	event    *models.PaymentEvent
	parseErr error
}

func (m *mockPayments) CreateCustomer(context.Context, string, string) (string, error) {
	return "cus_test", nil
}

func (m *mockPayments) CreateCheckoutSession(context.Context, models.CheckoutRequest) (string, error) {
	return "cs_test", nil
}

func (m *mockPayments) ParseWebhook([]byte, string) (*models.PaymentEvent, error) {
	return m.event, m.parseErr
}

type mockAuth struct {
	session *models.AuthSession
	err     error
}

func (m *mockAuth) GetUser(context.Context, string) (*models.User, error) { return nil, m.err }

func (m *mockAuth) ExchangeCode(context.Context, string, string) (*models.AuthSession, error) {
	return m.session, m.err
}

func (m *mockAuth) SignOut(context.Context, string) error { return nil }

// --- Harness ---

// newTestApp builds an App over in-memory SQLite with local JWT validation
// and no vendor clients. Callers swap services before calling newTestServer.
func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLite.Path = ":memory:"
	cfg.Logging.Outputs = nil
	cfg.Auth.JWTSecret = testJWTSecret
	cfg.Quota.FreeMonthlyClicks = 2

	a, err := app.NewAppWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func newTestServer(a *app.App) http.Handler {
	return NewServer(a).Handler()
}

func userToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return tok
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func newWebhookRequest(payload, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewBufferString(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	return req
}
