package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type clickStore struct {
	db *sql.DB
}

func (s *clickStore) InsertClick(ctx context.Context, click *models.TickerClick) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ticker_clicks (id, user_id, ticker, month_year, clicked_at) VALUES (?, ?, ?, ?, ?)`,
		click.ID, click.UserID, click.Ticker, click.MonthYear, click.ClickedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (s *clickStore) CountClicks(ctx context.Context, userID, monthYear string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ticker_clicks WHERE user_id = ? AND month_year = ?`,
		userID, monthYear).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}
	return n, nil
}
