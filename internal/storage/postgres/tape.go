package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type tapeStore struct {
	db *gorm.DB
}

func (s *tapeStore) ListTape(ctx context.Context) ([]models.TickerTapeItem, error) {
	var recs []TapeRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list tape: %w", err)
	}

	items := make([]models.TickerTapeItem, 0, len(recs))
	for _, r := range recs {
		trend := []float64{}
		if len(r.Trend) > 0 {
			if err := json.Unmarshal(r.Trend, &trend); err != nil {
				return nil, fmt.Errorf("decode trend for %s: %w", r.Cashtag, err)
			}
			if trend == nil {
				trend = []float64{}
			}
		}
		items = append(items, models.TickerTapeItem{
			ID:          r.ID,
			Cashtag:     r.Cashtag,
			PrevOpen:    r.PrevOpen,
			PrevEOD:     r.PrevEOD,
			LatestPrice: r.LatestPrice,
			Change:      r.Chng,
			Trend:       trend,
		})
	}
	return items, nil
}

func (s *tapeStore) ReplaceTape(ctx context.Context, items []models.TickerTapeItem) error {
	recs := make([]TapeRecord, 0, len(items))
	for _, it := range items {
		trend, err := json.Marshal(it.Trend)
		if err != nil {
			return fmt.Errorf("encode trend for %s: %w", it.Cashtag, err)
		}
		recs = append(recs, TapeRecord{
			ID:          it.ID,
			Cashtag:     it.Cashtag,
			PrevOpen:    it.PrevOpen,
			PrevEOD:     it.PrevEOD,
			LatestPrice: it.LatestPrice,
			Chng:        it.Change,
			Trend:       trend,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TapeRecord{}).Error; err != nil {
			return fmt.Errorf("clear tape: %w", err)
		}
		if len(recs) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(recs, 100).Error; err != nil {
			return fmt.Errorf("insert tape: %w", err)
		}
		return nil
	})
}
