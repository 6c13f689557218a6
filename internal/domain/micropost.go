package domain

import (
	"context"
	"time"
)

// Micropost is the post record the feed is derived from. The core only
// depends on author id and creation time for ordering; content is carried
// through for callers.
type Micropost struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	Content   string    `gorm:"size:280;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Micropost) TableName() string { return "microposts" }

// PostStore is the read contract the feed resolver consumes: one bounded
// query over a set of author ids, ordered newest-first.
type PostStore interface {
	ByAuthorIDs(ctx context.Context, authorIDs []string, offset, limit int) ([]Micropost, error)
}
