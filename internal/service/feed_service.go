package service

import (
	"context"

	"go-social-core/internal/core/metrics"
	"go-social-core/internal/domain"
)

const DefaultFeedLimit = 30

// FeedService derives the posts visible to a user: their own plus those of
// everyone they follow. The following-id set is computed once per call and
// the post store is hit with a single bounded query.
type FeedService struct {
	graph *GraphService
	posts domain.PostStore
}

func NewFeedService(graph *GraphService, posts domain.PostStore) *FeedService {
	return &FeedService{graph: graph, posts: posts}
}

// Feed returns the user's timeline, newest first. Re-querying reflects the
// current graph, not a snapshot.
func (s *FeedService) Feed(ctx context.Context, userID string, offset, limit int) ([]domain.Micropost, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	ids, err := s.graph.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.FeedQueries.Inc()
	return s.posts.ByAuthorIDs(ctx, append(ids, userID), offset, limit)
}
