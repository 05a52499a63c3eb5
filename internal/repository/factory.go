package repository

import (
	"fmt"

	"takopi/internal/config"
	"takopi/internal/filestore"

	"gorm.io/gorm"
)

// Repositories bundles every repository behind its interface so the service
// layer never knows which backend is live.
type Repositories struct {
	Users       UserRepository
	Contents    ContentRepository
	Follows     FollowRepository
	Likes       LikeRepository
	Collections CollectionRepository
}

// NewRepositories selects the storage backend for the social entities from
// the configured storage mode. User and content records always live in the
// relational store; in local mode the follow, like and collection
// repositories are swapped for their file-backed implementations. An unknown
// mode is an error, never a silent fallback.
func NewRepositories(cfg *config.Config, db *gorm.DB, store *filestore.Store) (*Repositories, error) {
	repos := &Repositories{
		Users:    NewUserRepository(db),
		Contents: NewContentRepository(db),
	}

	switch cfg.StorageMode {
	case config.StorageModeDatabase:
		repos.Follows = NewFollowRepository(db)
		repos.Likes = NewLikeRepository(db)
		repos.Collections = NewCollectionRepository(db)
	case config.StorageModeLocal:
		if store == nil {
			return nil, fmt.Errorf("storage mode %q requires an open file store", cfg.StorageMode)
		}
		repos.Follows = NewFollowFileRepository(store)
		repos.Likes = NewLikeFileRepository(store)
		repos.Collections = NewCollectionFileRepository(store)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}
	return repos, nil
}
