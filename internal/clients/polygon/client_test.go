package polygon

import (
	"context"
	"errors"
	"testing"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/interfaces"
)

type fakeRest struct {
	resp *models.GetTickerDetailsResponse
	err  error
	got  string
}

func (f *fakeRest) GetTickerDetails(_ context.Context, params *models.GetTickerDetailsParams, _ ...models.RequestOption) (*models.GetTickerDetailsResponse, error) {
	f.got = params.Ticker
	return f.resp, f.err
}

func TestGetTickerDetails_Maps(t *testing.T) {
	resp := &models.GetTickerDetailsResponse{}
	resp.Results.Name = "Tesla, Inc."
	resp.Results.Description = "Electric vehicles."
	resp.Results.MarketCap = 812_345_678_901
	fake := &fakeRest{resp: resp}

	entry, err := newClient(fake).GetTickerDetails(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", fake.got)
	assert.Equal(t, "Tesla, Inc.", entry.StockName)
	assert.Equal(t, "Electric vehicles.", entry.Description)
	assert.Equal(t, "812B", entry.MarketCap)
}

func TestGetTickerDetails_MissingFieldsDefault(t *testing.T) {
	entry, err := newClient(&fakeRest{resp: &models.GetTickerDetailsResponse{}}).GetTickerDetails(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", entry.StockName)
	assert.Equal(t, "No description available", entry.Description)
	assert.Equal(t, "N/A", entry.MarketCap)
}

func TestGetTickerDetails_NotFound(t *testing.T) {
	fake := &fakeRest{err: &models.ErrorResponse{StatusCode: 404}}

	_, err := newClient(fake).GetTickerDetails(context.Background(), "NOPE")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestGetTickerDetails_OtherError(t *testing.T) {
	fake := &fakeRest{err: errors.New("connection reset")}

	_, err := newClient(fake).GetTickerDetails(context.Background(), "TSLA")
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrNotFound)
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient("", 0)
	assert.ErrorIs(t, err, interfaces.ErrNotConfigured)
}

func TestFormatMarketCap(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "N/A"},
		{2_500_000_000_000, "2500B"},
		{100_000_000_000, "100B"},
		{99_949_000_000, "99.9B"},
		{1_000_000_000, "1.0B"},
		{4_560_000_000, "4.6B"},
		{999_999_999, "1000M"},
		{12_400_000, "12M"},
		{500_000, "1M"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatMarketCap(tc.in), "FormatMarketCap(%v)", tc.in)
	}
}
