package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-social-core/internal/domain"
)

// MicropostRepo is the gorm-backed adapter behind the PostStore contract.
// The feed resolver only depends on ByAuthorIDs; Create exists for the
// surrounding layers that own posting.
type MicropostRepo struct{ db *gorm.DB }

func NewMicropostRepo(db *gorm.DB) *MicropostRepo { return &MicropostRepo{db: db} }

func (r *MicropostRepo) Create(ctx context.Context, p *domain.Micropost) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// ByAuthorIDs returns posts by any of the given authors, newest first, in a
// single bounded query.
func (r *MicropostRepo) ByAuthorIDs(ctx context.Context, authorIDs []string, offset, limit int) ([]domain.Micropost, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []domain.Micropost
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", authorIDs).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

var _ domain.PostStore = (*MicropostRepo)(nil)
