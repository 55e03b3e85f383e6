package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type postStore struct {
	db *gorm.DB
}

func (s *postStore) GetPosts(ctx context.Context, cashtag string) ([]models.PostRecord, error) {
	var rec PostsRecord
	err := s.db.WithContext(ctx).Where("cashtag = ?", cashtag).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.PostRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return decodePosts(rec.JSONResult)
}

func (s *postStore) SavePosts(ctx context.Context, cashtag string, posts []models.PostRecord) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cashtag"}},
		DoUpdates: clause.AssignmentColumns([]string{"json_result"}),
	}).Create(&PostsRecord{Cashtag: cashtag, JSONResult: data}).Error
	if err != nil {
		return fmt.Errorf("save posts: %w", err)
	}
	return nil
}

func decodePosts(data []byte) ([]models.PostRecord, error) {
	posts := []models.PostRecord{}
	if len(data) == 0 || string(data) == "null" {
		return posts, nil
	}
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}
