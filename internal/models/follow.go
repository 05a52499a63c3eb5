package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow represents a directed social edge from one user to another.
// The combination of FollowerID and FollowingID must be unique.
type Follow struct {
	ID          string    `gorm:"primaryKey;size:40" json:"id"`
	FollowerID  string    `gorm:"size:40;not null;uniqueIndex:idx_follower_following" json:"follower_id"`
	FollowingID string    `gorm:"size:40;not null;uniqueIndex:idx_follower_following" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Follower  *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following *User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// IsFollower reports whether userID is the follower side of this edge.
func (f *Follow) IsFollower(userID string) bool {
	return userID != "" && f.FollowerID == userID
}

// IsSelfFollow reports whether the edge points back at its own follower.
func (f *Follow) IsSelfFollow() bool {
	return f.FollowerID == f.FollowingID
}

// DocID returns the file-store identifier for this record.
func (f *Follow) DocID() string { return f.ID }

// SetDocID assigns the file-store identifier for this record.
func (f *Follow) SetDocID(id string) { f.ID = id }

// StampNew records the creation time for this record.
func (f *Follow) StampNew(now time.Time) { f.CreatedAt = now }

// StampUpdated is a no-op; follow edges are immutable once created.
func (f *Follow) StampUpdated(time.Time) {}
