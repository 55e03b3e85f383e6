package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guregu/null/v6"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type postStore struct {
	db *sql.DB
}

func (s *postStore) GetPosts(ctx context.Context, cashtag string) ([]models.PostRecord, error) {
	var blob null.String
	err := s.db.QueryRowContext(ctx,
		`SELECT json_result FROM query_bot_view_json WHERE cashtag = ?`, cashtag).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.PostRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	posts := []models.PostRecord{}
	if !blob.Valid || blob.String == "" || blob.String == "null" {
		return posts, nil
	}
	if err := json.Unmarshal([]byte(blob.String), &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (s *postStore) SavePosts(ctx context.Context, cashtag string, posts []models.PostRecord) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_bot_view_json (cashtag, json_result) VALUES (?, ?)
		ON CONFLICT(cashtag) DO UPDATE SET json_result = excluded.json_result`,
		cashtag, string(data))
	if err != nil {
		return fmt.Errorf("save posts: %w", err)
	}
	return nil
}
