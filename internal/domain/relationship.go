package domain

import (
	"context"
	"time"
)

// Relationship is a directed follow edge. The composite unique index keeps
// set semantics: at most one edge per (follower, followed) pair.
type Relationship struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	FollowerID string    `gorm:"size:36;not null;uniqueIndex:idx_follower_followed" json:"followerId"`
	FollowedID string    `gorm:"size:36;not null;uniqueIndex:idx_follower_followed;index" json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Relationship) TableName() string { return "relationships" }

type RelationshipRepository interface {
	// Create inserts the edge, returning apperr.ErrConflict when it
	// already exists.
	Create(ctx context.Context, followerID, followedID string) error
	// Delete removes the edge; deleting an absent edge is a no-op.
	Delete(ctx context.Context, followerID, followedID string) error
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}
