package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Field constraints for collections.
const (
	MaxCollectionTitleLen       = 50
	MaxCollectionDescriptionLen = 200
)

// Collection is a user-owned named grouping of content items.
type Collection struct {
	ID          string `gorm:"primaryKey;size:40" json:"id"`
	UserID      string `gorm:"size:40;not null;index:idx_collections_user" json:"user_id"`
	Title       string `gorm:"size:50;not null" json:"title"`
	Description string `gorm:"size:200" json:"description"`
	IsPublic    bool   `gorm:"not null;default:false" json:"is_public"`
	// ItemCount is not persisted; computed at query time.
	ItemCount int64     `gorm:"->" json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []CollectionItem `gorm:"foreignKey:CollectionID" json:"items,omitempty"`
}

// TableName specifies the table name for GORM.
func (Collection) TableName() string {
	return "collections"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (c *Collection) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsOwnedBy reports whether userID owns this collection. Only the owner may
// mutate or delete it.
func (c *Collection) IsOwnedBy(userID string) bool {
	return userID != "" && c.UserID == userID
}

// CanBeViewedBy reports whether userID may view this collection. Public
// collections are visible to everyone including anonymous callers (empty
// userID); private ones only to their owner.
func (c *Collection) CanBeViewedBy(userID string) bool {
	if c.IsPublic {
		return true
	}
	return c.IsOwnedBy(userID)
}

// DocID returns the file-store identifier for this record.
func (c *Collection) DocID() string { return c.ID }

// SetDocID assigns the file-store identifier for this record.
func (c *Collection) SetDocID(id string) { c.ID = id }

// StampNew records the creation time for this record.
func (c *Collection) StampNew(now time.Time) {
	c.CreatedAt = now
	c.UpdatedAt = now
}

// StampUpdated bumps the modification time for this record.
func (c *Collection) StampUpdated(now time.Time) { c.UpdatedAt = now }

// ValidateCollectionTitle checks the non-empty and length constraints on a
// collection title after trimming. Returns the trimmed title.
func ValidateCollectionTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", NewValidationError("Collection title is required")
	}
	if len(trimmed) > MaxCollectionTitleLen {
		return "", NewValidationError("Collection title too long (max 50 characters)")
	}
	return trimmed, nil
}

// ValidateCollectionDescription checks the length constraint on a collection
// description after trimming. Returns the trimmed description.
func ValidateCollectionDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if len(trimmed) > MaxCollectionDescriptionLen {
		return "", NewValidationError("Collection description too long (max 200 characters)")
	}
	return trimmed, nil
}

// CollectionItem is the membership of one content item inside one collection.
// The combination of CollectionID and ContentID must be unique.
type CollectionItem struct {
	ID           string    `gorm:"primaryKey;size:40" json:"id"`
	CollectionID string    `gorm:"size:40;not null;uniqueIndex:idx_collection_content" json:"collection_id"`
	ContentID    string    `gorm:"size:40;not null;uniqueIndex:idx_collection_content" json:"content_id"`
	AddedAt      time.Time `gorm:"column:added_at;autoCreateTime" json:"added_at"`

	// Relationships
	Content *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}

// TableName specifies the table name for GORM.
func (CollectionItem) TableName() string {
	return "collection_items"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (i *CollectionItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// DocID returns the file-store identifier for this record.
func (i *CollectionItem) DocID() string { return i.ID }

// SetDocID assigns the file-store identifier for this record.
func (i *CollectionItem) SetDocID(id string) { i.ID = id }

// StampNew records the creation time for this record.
func (i *CollectionItem) StampNew(now time.Time) { i.AddedAt = now }

// StampUpdated is a no-op; memberships are immutable once created.
func (i *CollectionItem) StampUpdated(time.Time) {}
