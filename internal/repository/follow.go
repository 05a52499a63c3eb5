// Package repository implements the data access layer for the application.
// Every social entity has one interface and two implementations: a GORM one
// over the relational store and a file one over the local document store.
package repository

import (
	"context"
	"errors"

	"takopi/internal/models"
	"takopi/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	// Create persists a new edge. It fails with a conflict error when the
	// (follower, following) pair already exists.
	Create(ctx context.Context, follow *models.Follow) error
	GetByID(ctx context.Context, id string) (*models.Follow, error)
	// GetByUsers resolves the edge by its natural key. Returns (nil, nil)
	// when no edge exists.
	GetByUsers(ctx context.Context, followerID, followingID string) (*models.Follow, error)
	GetFollowers(ctx context.Context, userID string, limit, offset int) ([]models.Follow, error)
	GetFollowing(ctx context.Context, userID string, limit, offset int) ([]models.Follow, error)
	CountByFollower(ctx context.Context, userID string) (int64, error)
	CountByFollowing(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// followRepository implements FollowRepository over the relational store.
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a FollowRepository backed by the database.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	defer observability.TrackStorageOp("database", "follow", "create")()
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) GetByID(ctx context.Context, id string) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).First(&follow, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Follow", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &follow, nil
}

func (r *followRepository) GetByUsers(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No edge exists
		}
		return nil, models.NewInternalError(err)
	}
	return &follow, nil
}

func (r *followRepository) GetFollowers(ctx context.Context, userID string, limit, offset int) ([]models.Follow, error) {
	var follows []models.Follow
	if err := r.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&follows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) GetFollowing(ctx context.Context, userID string, limit, offset int) ([]models.Follow, error) {
	var follows []models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&follows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) CountByFollower(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountByFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackStorageOp("database", "follow", "delete")()
	if err := r.db.WithContext(ctx).Delete(&models.Follow{}, "id = ?", id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
