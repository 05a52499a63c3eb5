package repository

import (
	"context"
	"errors"

	"takopi/internal/models"

	"gorm.io/gorm"
)

// ContentRepository defines persistence operations for marketplace content.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id string) (*models.Content, error)
	GetByCreator(ctx context.Context, creatorID string, limit, offset int) ([]models.Content, error)
	List(ctx context.Context, kind string, limit, offset int) ([]models.Content, error)
	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id string) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository returns a ContentRepository backed by the database.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) GetByID(ctx context.Context, id string) (*models.Content, error) {
	var content models.Content
	err := r.db.WithContext(ctx).
		Select("contents.*, (?) AS likes_count",
			r.db.Model(&models.Like{}).
				Select("COUNT(*)").
				Where("likes.content_id = contents.id")).
		First(&content, "contents.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &content, nil
}

func (r *contentRepository) GetByCreator(ctx context.Context, creatorID string, limit, offset int) ([]models.Content, error) {
	var contents []models.Content
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contents).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return contents, nil
}

func (r *contentRepository) List(ctx context.Context, kind string, limit, offset int) ([]models.Content, error) {
	var contents []models.Content
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Find(&contents).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return contents, nil
}

func (r *contentRepository) Update(ctx context.Context, content *models.Content) error {
	if err := r.db.WithContext(ctx).Save(content).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Content{}, "id = ?", id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
