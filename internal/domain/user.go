package domain

import (
	"context"
	"time"
)

// User is the identity aggregate: credentials, token digests, and
// activation/reset state. Each *_digest column holds a bcrypt digest or is
// empty; token plaintexts are never persisted.
type User struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	Name           string `gorm:"size:64;not null" json:"name"`
	Email          string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordDigest string `gorm:"size:100;not null" json:"-"`

	RememberDigest string `gorm:"size:100" json:"-"`

	ActivationDigest string     `gorm:"size:100" json:"-"`
	Activated        bool       `gorm:"not null;default:false" json:"activated"`
	ActivatedAt      *time.Time `json:"activatedAt,omitempty"`

	ResetDigest string     `gorm:"size:100" json:"-"`
	ResetSentAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail expects an already-normalized (lowercased) email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	// UpdateColumns persists exactly the given columns, leaving the rest
	// of the record untouched.
	UpdateColumns(ctx context.Context, id string, cols map[string]any) error
	// Delete removes the user and, in the same transaction, every
	// relationship edge and micropost belonging to them.
	Delete(ctx context.Context, id string) error
}
