package repository

import (
	"context"
	"errors"
	"sort"

	"takopi/internal/filestore"
	"takopi/internal/models"
	"takopi/internal/observability"
)

// likeFileRepository implements LikeRepository over the local document store.
type likeFileRepository struct {
	likes *filestore.Collection[models.Like, *models.Like]
}

// NewLikeFileRepository returns a LikeRepository backed by the file store.
func NewLikeFileRepository(store *filestore.Store) LikeRepository {
	return &likeFileRepository{
		likes: filestore.NewCollection[models.Like](store, "likes"),
	}
}

func (r *likeFileRepository) Create(_ context.Context, like *models.Like) error {
	defer observability.TrackStorageOp("local", "like", "create")()
	_, err := r.likes.CreateUnique(like, map[string]any{
		"user_id":    like.UserID,
		"content_id": like.ContentID,
	})
	if err != nil {
		if errors.Is(err, filestore.ErrExists) {
			return models.NewConflictError("Content already liked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *likeFileRepository) GetByUserAndContent(_ context.Context, userID, contentID string) (*models.Like, error) {
	found, err := r.likes.Find(map[string]any{
		"user_id":    userID,
		"content_id": contentID,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *likeFileRepository) GetByUser(_ context.Context, userID string, limit, offset int) ([]models.Like, error) {
	found, err := r.likes.Find(map[string]any{"user_id": userID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	return window(found, limit, offset), nil
}

func (r *likeFileRepository) CountByContent(_ context.Context, contentID string) (int64, error) {
	n, err := r.likes.Count(map[string]any{"content_id": contentID})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return int64(n), nil
}

func (r *likeFileRepository) Delete(_ context.Context, id string) error {
	defer observability.TrackStorageOp("local", "like", "delete")()
	if _, err := r.likes.Delete(id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
