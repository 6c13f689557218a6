package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-social-core/internal/apperr"
	"go-social-core/internal/domain"
)

type RelationshipRepo struct{ db *gorm.DB }

func NewRelationshipRepo(db *gorm.DB) *RelationshipRepo {
	return &RelationshipRepo{db: db}
}

// Create inserts the edge. A duplicate insert under the composite unique
// index maps to apperr.ErrConflict, which the service treats as
// already-following.
func (r *RelationshipRepo) Create(ctx context.Context, followerID, followedID string) error {
	rel := domain.Relationship{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).Create(&rel).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrConflict
	}
	return err
}

func (r *RelationshipRepo) Delete(ctx context.Context, followerID, followedID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&domain.Relationship{}).Error
}

func (r *RelationshipRepo) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RelationshipRepo) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Relationship{}).
		Where("follower_id = ?", userID).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *RelationshipRepo) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Relationship{}).
		Where("followed_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var _ domain.RelationshipRepository = (*RelationshipRepo)(nil)
