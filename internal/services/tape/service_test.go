package tape

import (
	"context"
	"errors"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
	"github.com/erickalfaro/my-dashboard/internal/storage"
	"github.com/erickalfaro/my-dashboard/internal/storage/sqlite"
)

type mockTapeStore struct {
	items []models.TickerTapeItem
	err   error
}

func (m *mockTapeStore) ListTape(_ context.Context) ([]models.TickerTapeItem, error) {
	out := append([]models.TickerTapeItem(nil), m.items...)
	return out, m.err
}

func (m *mockTapeStore) ReplaceTape(_ context.Context, items []models.TickerTapeItem) error {
	m.items = items
	return nil
}

func fixture() *mockTapeStore {
	return &mockTapeStore{items: []models.TickerTapeItem{
		{ID: 1, Cashtag: "TSLA", Change: null.FloatFrom(2.5), LatestPrice: null.FloatFrom(250)},
		{ID: 2, Cashtag: "AAPL", Change: null.Float{}, LatestPrice: null.FloatFrom(190)},
		{ID: 3, Cashtag: "NVDA", Change: null.FloatFrom(-1.2), LatestPrice: null.Float{}},
		{ID: 4, Cashtag: "AMD", Change: null.FloatFrom(4.1), LatestPrice: null.FloatFrom(160)},
	}}
}

func cashtags(items []models.TickerTapeItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Cashtag
	}
	return out
}

func TestList_StoredOrderWithoutKey(t *testing.T) {
	svc := NewService(fixture(), common.NewSilentLogger())

	items, err := svc.List(context.Background(), interfaces.TapeSort{})
	require.NoError(t, err)
	assert.Equal(t, []string{"TSLA", "AAPL", "NVDA", "AMD"}, cashtags(items))
}

func TestList_NullsLastBothDirections(t *testing.T) {
	svc := NewService(fixture(), common.NewSilentLogger())

	asc, err := svc.List(context.Background(), interfaces.TapeSort{Key: "chng", Direction: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA", "TSLA", "AMD", "AAPL"}, cashtags(asc))

	desc, err := svc.List(context.Background(), interfaces.TapeSort{Key: "chng", Direction: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AMD", "TSLA", "NVDA", "AAPL"}, cashtags(desc))

	price, err := svc.List(context.Background(), interfaces.TapeSort{Key: "latest_price", Direction: "DESC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"TSLA", "AAPL", "AMD", "NVDA"}, cashtags(price))
}

func TestList_StringAndIDKeys(t *testing.T) {
	svc := NewService(fixture(), common.NewSilentLogger())

	items, err := svc.List(context.Background(), interfaces.TapeSort{Key: "cashtag"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "AMD", "NVDA", "TSLA"}, cashtags(items))

	items, err = svc.List(context.Background(), interfaces.TapeSort{Key: "id", Direction: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AMD", "NVDA", "AAPL", "TSLA"}, cashtags(items))
}

func TestList_InvalidSort(t *testing.T) {
	svc := NewService(fixture(), common.NewSilentLogger())

	_, err := svc.List(context.Background(), interfaces.TapeSort{Key: "volume"})
	assert.ErrorIs(t, err, ErrInvalidSortKey)

	_, err = svc.List(context.Background(), interfaces.TapeSort{Key: "id", Direction: "up"})
	assert.ErrorIs(t, err, ErrInvalidSortDirection)
}

func TestList_StoreError(t *testing.T) {
	svc := NewService(&mockTapeStore{err: errors.New("db down")}, common.NewSilentLogger())

	_, err := svc.List(context.Background(), interfaces.TapeSort{})
	assert.Error(t, err)
}

func TestList_EmptyStoreIsEmptySlice(t *testing.T) {
	svc := NewService(&mockTapeStore{}, common.NewSilentLogger())

	items, err := svc.List(context.Background(), interfaces.TapeSort{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestList_SeededSQLite(t *testing.T) {
	logger := common.NewSilentLogger()
	store, err := sqlite.NewStore(logger, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	seeded, err := storage.SeedTape(context.Background(), logger, store.TapeStore())
	require.NoError(t, err)
	require.True(t, seeded)

	svc := NewService(store.TapeStore(), logger)
	items, err := svc.List(context.Background(), interfaces.TapeSort{Key: "chng", Direction: "desc"})
	require.NoError(t, err)
	require.Len(t, items, len(storage.DemoTape()))
	for i := 1; i < len(items); i++ {
		if items[i].Change.Valid && items[i-1].Change.Valid {
			assert.GreaterOrEqual(t, items[i-1].Change.Float64, items[i].Change.Float64)
		}
	}
}
