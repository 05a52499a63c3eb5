package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like represents a user's endorsement of a content item.
// The combination of UserID and ContentID must be unique.
type Like struct {
	ID        string    `gorm:"primaryKey;size:40" json:"id"`
	UserID    string    `gorm:"size:40;not null;uniqueIndex:idx_user_content" json:"user_id"`
	ContentID string    `gorm:"size:40;not null;uniqueIndex:idx_user_content" json:"content_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}

// TableName specifies the table name for GORM.
func (Like) TableName() string {
	return "likes"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// DocID returns the file-store identifier for this record.
func (l *Like) DocID() string { return l.ID }

// SetDocID assigns the file-store identifier for this record.
func (l *Like) SetDocID(id string) { l.ID = id }

// StampNew records the creation time for this record.
func (l *Like) StampNew(now time.Time) { l.CreatedAt = now }

// StampUpdated is a no-op; likes are immutable once created.
func (l *Like) StampUpdated(time.Time) {}
