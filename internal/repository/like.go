package repository

import (
	"context"
	"errors"

	"takopi/internal/models"
	"takopi/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	// Create persists a new like. It fails with a conflict error when the
	// (user, content) pair already exists.
	Create(ctx context.Context, like *models.Like) error
	// GetByUserAndContent resolves the like by its natural key. Returns
	// (nil, nil) when no like exists.
	GetByUserAndContent(ctx context.Context, userID, contentID string) (*models.Like, error)
	GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.Like, error)
	CountByContent(ctx context.Context, contentID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// likeRepository implements LikeRepository over the relational store.
type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a LikeRepository backed by the database.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	defer observability.TrackStorageOp("database", "like", "create")()
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Content already liked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *likeRepository) GetByUserAndContent(ctx context.Context, userID, contentID string) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not liked
		}
		return nil, models.NewInternalError(err)
	}
	return &like, nil
}

func (r *likeRepository) GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

func (r *likeRepository) CountByContent(ctx context.Context, contentID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("content_id = ?", contentID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *likeRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackStorageOp("database", "like", "delete")()
	if err := r.db.WithContext(ctx).Delete(&models.Like{}, "id = ?", id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
