package repository

import (
	"context"
	"errors"
	"time"

	"takopi/internal/models"
	"takopi/internal/observability"

	"gorm.io/gorm"
)

// CollectionRepository defines persistence operations for collections and
// their items.
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	// GetByID resolves a collection by id. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	GetByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Collection, error)
	GetPublic(ctx context.Context, limit, offset int) ([]models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) error
	// Delete removes the collection and all of its items.
	Delete(ctx context.Context, id string) error

	// AddItem persists a new item and bumps the parent collection's
	// updated_at in the same transaction. Fails with a conflict error when
	// the content is already in the collection.
	AddItem(ctx context.Context, item *models.CollectionItem) error
	// RemoveItem deletes the (collection, content) item if present and
	// reports whether anything was removed.
	RemoveItem(ctx context.Context, collectionID, contentID string) (bool, error)
	GetItems(ctx context.Context, collectionID string, limit, offset int) ([]models.CollectionItem, error)
	GetItem(ctx context.Context, collectionID, contentID string) (*models.CollectionItem, error)
	CountItems(ctx context.Context, collectionID string) (int64, error)
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository returns a CollectionRepository backed by the database.
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	defer observability.TrackStorageOp("database", "collection", "create")()
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &collection, nil
}

func (r *collectionRepository) GetByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Collection, error) {
	var collections []models.Collection
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&collections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return collections, nil
}

func (r *collectionRepository) GetPublic(ctx context.Context, limit, offset int) ([]models.Collection, error) {
	var collections []models.Collection
	if err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&collections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return collections, nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	defer observability.TrackStorageOp("database", "collection", "update")()
	if err := r.db.WithContext(ctx).Save(collection).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackStorageOp("database", "collection", "delete")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Collection{}, "id = ?", id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) AddItem(ctx context.Context, item *models.CollectionItem) error {
	defer observability.TrackStorageOp("database", "collection_item", "create")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Model(&models.Collection{}).
			Where("id = ?", item.CollectionID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Content is already in this collection")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) RemoveItem(ctx context.Context, collectionID, contentID string) (bool, error) {
	defer observability.TrackStorageOp("database", "collection_item", "delete")()
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("collection_id = ? AND content_id = ?", collectionID, contentID).
			Delete(&models.CollectionItem{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		if !removed {
			return nil
		}
		return tx.Model(&models.Collection{}).
			Where("id = ?", collectionID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return removed, nil
}

func (r *collectionRepository) GetItems(ctx context.Context, collectionID string, limit, offset int) ([]models.CollectionItem, error) {
	var items []models.CollectionItem
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("added_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *collectionRepository) GetItem(ctx context.Context, collectionID, contentID string) (*models.CollectionItem, error) {
	var item models.CollectionItem
	if err := r.db.WithContext(ctx).
		Where("collection_id = ? AND content_id = ?", collectionID, contentID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *collectionRepository) CountItems(ctx context.Context, collectionID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CollectionItem{}).
		Where("collection_id = ?", collectionID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
