// Package tape lists and orders the ticker-tape snapshot.
package tape

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

var (
	ErrInvalidSortKey       = errors.New("invalid sort key")
	ErrInvalidSortDirection = errors.New("invalid sort direction")
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []string{"id", "cashtag", "chng", "latest_price", "prev_eod", "prev_open"}

// Service implements interfaces.TapeService.
type Service struct {
	store  interfaces.TapeStore
	logger *common.Logger
}

var _ interfaces.TapeService = (*Service)(nil)

// NewService creates a tape service.
func NewService(store interfaces.TapeStore, logger *common.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns the snapshot, ordered by s when s.Key is set.
func (s *Service) List(ctx context.Context, ts interfaces.TapeSort) ([]models.TickerTapeItem, error) {
	less, desc, err := comparator(ts)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListTape(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list ticker tape")
		return nil, fmt.Errorf("failed to list ticker tape: %w", err)
	}
	if items == nil {
		items = []models.TickerTapeItem{}
	}
	if less != nil {
		Sort(items, less, desc)
	}
	return items, nil
}

// comparator validates ts and returns the ascending ordering for its key.
// A nil func means keep stored order.
func comparator(ts interfaces.TapeSort) (func(a, b models.TickerTapeItem) (int, bool), bool, error) {
	dir := strings.ToLower(strings.TrimSpace(ts.Direction))
	switch dir {
	case "", Asc:
	case Desc:
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidSortDirection, ts.Direction)
	}

	key := strings.ToLower(strings.TrimSpace(ts.Key))
	var fn func(a, b models.TickerTapeItem) (int, bool)
	switch key {
	case "":
		return nil, false, nil
	case "id":
		fn = func(a, b models.TickerTapeItem) (int, bool) { return a.ID - b.ID, true }
	case "cashtag":
		fn = func(a, b models.TickerTapeItem) (int, bool) {
			return strings.Compare(a.Cashtag, b.Cashtag), true
		}
	case "chng":
		fn = floatKey(func(i models.TickerTapeItem) null.Float { return i.Change })
	case "latest_price":
		fn = floatKey(func(i models.TickerTapeItem) null.Float { return i.LatestPrice })
	case "prev_eod":
		fn = floatKey(func(i models.TickerTapeItem) null.Float { return i.PrevEOD })
	case "prev_open":
		fn = floatKey(func(i models.TickerTapeItem) null.Float { return i.PrevOpen })
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidSortKey, ts.Key)
	}
	return fn, dir == Desc, nil
}

// floatKey compares a nullable column. The bool result is false when either
// side is null; Sort places nulls last in both directions.
func floatKey(get func(models.TickerTapeItem) null.Float) func(a, b models.TickerTapeItem) (int, bool) {
	return func(a, b models.TickerTapeItem) (int, bool) {
		av, bv := get(a), get(b)
		switch {
		case !av.Valid && !bv.Valid:
			return 0, false
		case !av.Valid:
			return 1, false
		case !bv.Valid:
			return -1, false
		case av.Float64 < bv.Float64:
			return -1, true
		case av.Float64 > bv.Float64:
			return 1, true
		}
		return 0, true
	}
}

// Sort orders items stably by cmp. desc reverses comparable pairs only, so
// nulls stay at the end.
func Sort(items []models.TickerTapeItem, cmp func(a, b models.TickerTapeItem) (int, bool), desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		c, comparable := cmp(items[i], items[j])
		if comparable && desc {
			c = -c
		}
		return c < 0
	})
}
