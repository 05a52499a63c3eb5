package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentKind enumerates the kinds of digital goods sold on the marketplace.
type ContentKind string

const (
	ContentKindModel3D ContentKind = "model3d"
	ContentKindTexture ContentKind = "texture"
	ContentKindMusic   ContentKind = "music"
	ContentKindAvatar  ContentKind = "avatar"
	ContentKindImage   ContentKind = "image"
)

// Content represents a digital good. The social core treats content ids as
// opaque; this model exists for the browse surface and for seeding.
type Content struct {
	ID         string      `gorm:"primaryKey;size:40" json:"id"`
	UserID     string      `gorm:"size:40;not null;index" json:"user_id"`
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title      string      `gorm:"size:120;not null" json:"title"`
	Kind       ContentKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	PriceCents int64       `gorm:"not null;default:0" json:"price_cents"`
	FileURL    string      `gorm:"size:500" json:"file_url"`
	// LikesCount is not persisted; computed at query time.
	LikesCount int64     `gorm:"->" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Content) TableName() string {
	return "contents"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (c *Content) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
