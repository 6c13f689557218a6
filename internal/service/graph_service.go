package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-social-core/internal/apperr"
	"go-social-core/internal/core/cache"
	"go-social-core/internal/core/metrics"
	"go-social-core/internal/domain"
)

const (
	followingCacheKeyPrefix = "graph:following:"
	followingCacheTTL       = 5 * time.Minute
)

func followingCacheKey(userID string) string {
	return followingCacheKeyPrefix + userID
}

// GraphService mutates and reads the directed follow graph. The cache is
// optional; when present, following-id sets are cached per user and
// invalidated on every mutation by that user.
type GraphService struct {
	edges domain.RelationshipRepository
	cache *cache.Cache
	log   *zap.Logger
}

func NewGraphService(edges domain.RelationshipRepository, c *cache.Cache, log *zap.Logger) *GraphService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GraphService{edges: edges, cache: c, log: log}
}

// Follow creates the edge. Following someone already followed is success;
// following yourself is rejected.
func (s *GraphService) Follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return apperr.ErrSelfFollow
	}
	if err := s.edges.Create(ctx, followerID, followedID); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			// Concurrent duplicate insert: already following.
			return nil
		}
		s.log.Error("follow failed",
			zap.String("follower_id", followerID),
			zap.String("followed_id", followedID),
			zap.Error(err))
		return err
	}
	metrics.GraphMutations.WithLabelValues("follow").Inc()
	s.invalidate(ctx, followerID)
	return nil
}

// Unfollow removes the edge; removing an absent edge is a no-op.
func (s *GraphService) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := s.edges.Delete(ctx, followerID, followedID); err != nil {
		s.log.Error("unfollow failed",
			zap.String("follower_id", followerID),
			zap.String("followed_id", followedID),
			zap.Error(err))
		return err
	}
	metrics.GraphMutations.WithLabelValues("unfollow").Inc()
	s.invalidate(ctx, followerID)
	return nil
}

func (s *GraphService) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return s.edges.Exists(ctx, followerID, followedID)
}

// FollowingIDs returns the ids the user follows, served from cache when
// one is configured.
func (s *GraphService) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	if s.cache == nil {
		return s.edges.FollowingIDs(ctx, userID)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, followingCacheKey(userID), followingCacheTTL,
		func(ctx context.Context) ([]string, error) {
			return s.edges.FollowingIDs(ctx, userID)
		})
}

func (s *GraphService) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return s.edges.FollowerIDs(ctx, userID)
}

func (s *GraphService) invalidate(ctx context.Context, followerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, followingCacheKey(followerID)); err != nil {
		s.log.Warn("following cache invalidate failed",
			zap.String("user_id", followerID), zap.Error(err))
	}
}
