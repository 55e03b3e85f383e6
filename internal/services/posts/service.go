// Package posts serves the per-cashtag social post feeds
package posts

import (
	"context"
	"fmt"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// Service implements interfaces.PostsService.
type Service struct {
	store  interfaces.PostStore
	logger *common.Logger
}

var _ interfaces.PostsService = (*Service)(nil)

// NewService creates a posts service.
func NewService(store interfaces.PostStore, logger *common.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetPosts returns the posts for ticker sorted ascending by hours. A cashtag
// with no stored row yields an empty slice.
func (s *Service) GetPosts(ctx context.Context, ticker string) ([]models.PostRecord, error) {
	posts, err := s.store.GetPosts(ctx, ticker)
	if err != nil {
		s.logger.Error().Str("ticker", ticker).Err(err).Msg("Failed to fetch posts")
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	if posts == nil {
		posts = []models.PostRecord{}
	}
	models.SortPostsByHours(posts)
	return posts, nil
}
