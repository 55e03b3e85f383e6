package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type clickStore struct {
	db *gorm.DB
}

func (s *clickStore) InsertClick(ctx context.Context, click *models.TickerClick) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	rec := ClickRecord{
		ID:        click.ID,
		UserID:    click.UserID,
		Ticker:    click.Ticker,
		MonthYear: click.MonthYear,
		ClickedAt: click.ClickedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (s *clickStore) CountClicks(ctx context.Context, userID, monthYear string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&ClickRecord{}).
		Where("user_id = ? AND month_year = ?", userID, monthYear).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}
	return int(n), nil
}
