package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/guregu/null/v6"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type tapeStore struct {
	db *sql.DB
}

func (s *tapeStore) ListTape(ctx context.Context) ([]models.TickerTapeItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, cashtag, prev_open, prev_eod, latest_price, chng, trend FROM ticker_tape ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tape: %w", err)
	}
	defer rows.Close()

	items := []models.TickerTapeItem{}
	for rows.Next() {
		var (
			it    models.TickerTapeItem
			trend null.String
		)
		if err := rows.Scan(&it.ID, &it.Cashtag, &it.PrevOpen, &it.PrevEOD, &it.LatestPrice, &it.Change, &trend); err != nil {
			return nil, fmt.Errorf("scan tape row: %w", err)
		}
		it.Trend = []float64{}
		if trend.Valid && trend.String != "" {
			if err := json.Unmarshal([]byte(trend.String), &it.Trend); err != nil {
				return nil, fmt.Errorf("decode trend for %s: %w", it.Cashtag, err)
			}
			if it.Trend == nil {
				it.Trend = []float64{}
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *tapeStore) ReplaceTape(ctx context.Context, items []models.TickerTapeItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tape replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ticker_tape`); err != nil {
		return fmt.Errorf("clear tape: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ticker_tape (id, cashtag, prev_open, prev_eod, latest_price, chng, trend)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare tape insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		trend, err := json.Marshal(it.Trend)
		if err != nil {
			return fmt.Errorf("encode trend for %s: %w", it.Cashtag, err)
		}
		if _, err := stmt.ExecContext(ctx, it.ID, it.Cashtag, it.PrevOpen, it.PrevEOD, it.LatestPrice, it.Change, string(trend)); err != nil {
			return fmt.Errorf("insert tape row %s: %w", it.Cashtag, err)
		}
	}
	return tx.Commit()
}
