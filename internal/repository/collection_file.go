package repository

import (
	"context"
	"errors"
	"sort"

	"takopi/internal/filestore"
	"takopi/internal/models"
	"takopi/internal/observability"
)

// collectionFileRepository implements CollectionRepository over the local
// document store. Collections and their items live in separate document
// collections; the cascade on Delete is sequential, items first.
type collectionFileRepository struct {
	collections *filestore.Collection[models.Collection, *models.Collection]
	items       *filestore.Collection[models.CollectionItem, *models.CollectionItem]
}

// NewCollectionFileRepository returns a CollectionRepository backed by the
// file store.
func NewCollectionFileRepository(store *filestore.Store) CollectionRepository {
	return &collectionFileRepository{
		collections: filestore.NewCollection[models.Collection](store, "collections"),
		items:       filestore.NewCollection[models.CollectionItem](store, "collection_items"),
	}
}

func (r *collectionFileRepository) Create(_ context.Context, collection *models.Collection) error {
	defer observability.TrackStorageOp("local", "collection", "create")()
	if _, err := r.collections.Create(collection); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionFileRepository) GetByID(_ context.Context, id string) (*models.Collection, error) {
	collection, err := r.collections.FindByID(id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return collection, nil
}

func (r *collectionFileRepository) GetByOwner(_ context.Context, ownerID string, limit, offset int) ([]models.Collection, error) {
	found, err := r.collections.Find(map[string]any{"user_id": ownerID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return sliceCollections(found, limit, offset), nil
}

func (r *collectionFileRepository) GetPublic(_ context.Context, limit, offset int) ([]models.Collection, error) {
	found, err := r.collections.Find(map[string]any{"is_public": true})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return sliceCollections(found, limit, offset), nil
}

func (r *collectionFileRepository) Update(_ context.Context, collection *models.Collection) error {
	defer observability.TrackStorageOp("local", "collection", "update")()
	updated, err := r.collections.Update(collection.ID, map[string]any{
		"title":       collection.Title,
		"description": collection.Description,
		"is_public":   collection.IsPublic,
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if updated == nil {
		return models.NewNotFoundError("Collection", collection.ID)
	}
	collection.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *collectionFileRepository) Delete(_ context.Context, id string) error {
	defer observability.TrackStorageOp("local", "collection", "delete")()
	items, err := r.items.Find(map[string]any{"collection_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	for _, item := range items {
		if _, err := r.items.Delete(item.ID); err != nil {
			return models.NewInternalError(err)
		}
	}
	if _, err := r.collections.Delete(id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionFileRepository) AddItem(_ context.Context, item *models.CollectionItem) error {
	defer observability.TrackStorageOp("local", "collection_item", "create")()
	_, err := r.items.CreateUnique(item, map[string]any{
		"collection_id": item.CollectionID,
		"content_id":    item.ContentID,
	})
	if err != nil {
		if errors.Is(err, filestore.ErrExists) {
			return models.NewConflictError("Content is already in this collection")
		}
		return models.NewInternalError(err)
	}
	// Bump the parent's updated_at so collection listings sort by activity.
	if _, err := r.collections.Update(item.CollectionID, nil); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionFileRepository) RemoveItem(_ context.Context, collectionID, contentID string) (bool, error) {
	defer observability.TrackStorageOp("local", "collection_item", "delete")()
	found, err := r.items.Find(map[string]any{
		"collection_id": collectionID,
		"content_id":    contentID,
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if len(found) == 0 {
		return false, nil
	}
	if _, err := r.items.Delete(found[0].ID); err != nil {
		return false, models.NewInternalError(err)
	}
	if _, err := r.collections.Update(collectionID, nil); err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *collectionFileRepository) GetItems(_ context.Context, collectionID string, limit, offset int) ([]models.CollectionItem, error) {
	found, err := r.items.Find(map[string]any{"collection_id": collectionID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].AddedAt.After(found[j].AddedAt)
	})
	return window(found, limit, offset), nil
}

func (r *collectionFileRepository) GetItem(_ context.Context, collectionID, contentID string) (*models.CollectionItem, error) {
	found, err := r.items.Find(map[string]any{
		"collection_id": collectionID,
		"content_id":    contentID,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *collectionFileRepository) CountItems(_ context.Context, collectionID string) (int64, error) {
	n, err := r.items.Count(map[string]any{"collection_id": collectionID})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return int64(n), nil
}

func sliceCollections(collections []models.Collection, limit, offset int) []models.Collection {
	sort.Slice(collections, func(i, j int) bool {
		return collections[i].UpdatedAt.After(collections[j].UpdatedAt)
	})
	return window(collections, limit, offset)
}
