package repository

import (
	"context"
	"errors"
	"sort"

	"takopi/internal/filestore"
	"takopi/internal/models"
	"takopi/internal/observability"
)

// followFileRepository implements FollowRepository over the local document
// store. Uniqueness of the (follower, following) pair is enforced with
// CreateUnique, which checks and writes under the store's writer lock.
type followFileRepository struct {
	follows *filestore.Collection[models.Follow, *models.Follow]
}

// NewFollowFileRepository returns a FollowRepository backed by the file store.
func NewFollowFileRepository(store *filestore.Store) FollowRepository {
	return &followFileRepository{
		follows: filestore.NewCollection[models.Follow](store, "follows"),
	}
}

func (r *followFileRepository) Create(_ context.Context, follow *models.Follow) error {
	defer observability.TrackStorageOp("local", "follow", "create")()
	_, err := r.follows.CreateUnique(follow, map[string]any{
		"follower_id":  follow.FollowerID,
		"following_id": follow.FollowingID,
	})
	if err != nil {
		if errors.Is(err, filestore.ErrExists) {
			return models.NewConflictError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followFileRepository) GetByID(_ context.Context, id string) (*models.Follow, error) {
	follow, err := r.follows.FindByID(id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follow, nil
}

func (r *followFileRepository) GetByUsers(_ context.Context, followerID, followingID string) (*models.Follow, error) {
	found, err := r.follows.Find(map[string]any{
		"follower_id":  followerID,
		"following_id": followingID,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *followFileRepository) GetFollowers(_ context.Context, userID string, limit, offset int) ([]models.Follow, error) {
	found, err := r.follows.Find(map[string]any{"following_id": userID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return sliceFollows(found, limit, offset), nil
}

func (r *followFileRepository) GetFollowing(_ context.Context, userID string, limit, offset int) ([]models.Follow, error) {
	found, err := r.follows.Find(map[string]any{"follower_id": userID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return sliceFollows(found, limit, offset), nil
}

func (r *followFileRepository) CountByFollower(_ context.Context, userID string) (int64, error) {
	n, err := r.follows.Count(map[string]any{"follower_id": userID})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return int64(n), nil
}

func (r *followFileRepository) CountByFollowing(_ context.Context, userID string) (int64, error) {
	n, err := r.follows.Count(map[string]any{"following_id": userID})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return int64(n), nil
}

func (r *followFileRepository) Delete(_ context.Context, id string) error {
	defer observability.TrackStorageOp("local", "follow", "delete")()
	if _, err := r.follows.Delete(id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// sliceFollows orders newest-first and applies the limit/offset window.
func sliceFollows(follows []models.Follow, limit, offset int) []models.Follow {
	sort.Slice(follows, func(i, j int) bool {
		return follows[i].CreatedAt.After(follows[j].CreatedAt)
	})
	return window(follows, limit, offset)
}

// window applies a limit/offset slice to an already ordered result set.
func window[T any](records []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []T{}
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}
