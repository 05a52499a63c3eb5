package service

import (
	"context"

	"takopi/internal/models"
	"takopi/internal/repository"
)

// UpdateCollectionInput carries a partial collection update. Nil fields are
// left untouched; present fields are re-validated before being applied.
type UpdateCollectionInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// CollectionService orchestrates collection and collection-item use-cases.
type CollectionService struct {
	collections repository.CollectionRepository
}

// NewCollectionService creates a new CollectionService.
func NewCollectionService(collections repository.CollectionRepository) *CollectionService {
	return &CollectionService{collections: collections}
}

// CreateCollection validates and persists a new collection for its owner.
func (s *CollectionService) CreateCollection(ctx context.Context, userID, title, description string, isPublic bool) (*models.Collection, error) {
	if userID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	title, err := models.ValidateCollectionTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = models.ValidateCollectionDescription(description)
	if err != nil {
		return nil, err
	}

	collection := &models.Collection{
		UserID:      userID,
		Title:       title,
		Description: description,
		IsPublic:    isPublic,
	}
	if err := s.collections.Create(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// GetCollection returns a collection if the viewer may see it. Private
// collections resolve as not-found for everyone but their owner, so their
// existence is not leaked.
func (s *CollectionService) GetCollection(ctx context.Context, collectionID, viewerID string) (*models.Collection, error) {
	collection, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !collection.CanBeViewedBy(viewerID) {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}
	count, err := s.collections.CountItems(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	collection.ItemCount = count
	return collection, nil
}

// GetUserCollections lists a user's collections, most recently updated first.
// Viewers other than the owner only see the public ones.
func (s *CollectionService) GetUserCollections(ctx context.Context, ownerID, viewerID string, limit, offset int) ([]models.Collection, error) {
	if ownerID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	collections, err := s.collections.GetByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if ownerID != viewerID {
		visible := make([]models.Collection, 0, len(collections))
		for _, c := range collections {
			if c.CanBeViewedBy(viewerID) {
				visible = append(visible, c)
			}
		}
		collections = visible
	}
	if err := s.attachItemCounts(ctx, collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// GetPublicCollections lists public collections, most recently updated first.
func (s *CollectionService) GetPublicCollections(ctx context.Context, limit, offset int) ([]models.Collection, error) {
	collections, err := s.collections.GetPublic(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.attachItemCounts(ctx, collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// attachItemCounts fills ItemCount on each collection from the store, the
// same derivation single-collection reads use.
func (s *CollectionService) attachItemCounts(ctx context.Context, collections []models.Collection) error {
	for i := range collections {
		count, err := s.collections.CountItems(ctx, collections[i].ID)
		if err != nil {
			return err
		}
		collections[i].ItemCount = count
	}
	return nil
}

// UpdateCollection applies a partial update after not-found and ownership
// checks, re-validating only the fields that are present.
func (s *CollectionService) UpdateCollection(ctx context.Context, collectionID, userID string, input UpdateCollectionInput) (*models.Collection, error) {
	collection, err := s.authorizeOwner(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := models.ValidateCollectionTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		collection.Title = title
	}
	if input.Description != nil {
		description, err := models.ValidateCollectionDescription(*input.Description)
		if err != nil {
			return nil, err
		}
		collection.Description = description
	}
	if input.IsPublic != nil {
		collection.IsPublic = *input.IsPublic
	}

	if err := s.collections.Update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// DeleteCollection removes a collection and its items after not-found and
// ownership checks.
func (s *CollectionService) DeleteCollection(ctx context.Context, collectionID, userID string) error {
	if _, err := s.authorizeOwner(ctx, collectionID, userID); err != nil {
		return err
	}
	return s.collections.Delete(ctx, collectionID)
}

// AddItem places a content item into the caller's collection. Adding a
// content item twice fails with a conflict rather than silently no-opping.
func (s *CollectionService) AddItem(ctx context.Context, collectionID, contentID, userID string) (*models.CollectionItem, error) {
	if contentID == "" {
		return nil, models.NewValidationError("Content id is required")
	}
	if _, err := s.authorizeOwner(ctx, collectionID, userID); err != nil {
		return nil, err
	}

	item := &models.CollectionItem{CollectionID: collectionID, ContentID: contentID}
	if err := s.collections.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem takes a content item out of the caller's collection. Removing a
// content item that is not in the collection succeeds as a no-op.
func (s *CollectionService) RemoveItem(ctx context.Context, collectionID, contentID, userID string) error {
	if contentID == "" {
		return models.NewValidationError("Content id is required")
	}
	if _, err := s.authorizeOwner(ctx, collectionID, userID); err != nil {
		return err
	}
	_, err := s.collections.RemoveItem(ctx, collectionID, contentID)
	return err
}

// GetItems lists a collection's items for a permitted viewer, newest first.
func (s *CollectionService) GetItems(ctx context.Context, collectionID, viewerID string, limit, offset int) ([]models.CollectionItem, error) {
	collection, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !collection.CanBeViewedBy(viewerID) {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}
	return s.collections.GetItems(ctx, collectionID, limit, offset)
}

func (s *CollectionService) loadCollection(ctx context.Context, collectionID string) (*models.Collection, error) {
	if collectionID == "" {
		return nil, models.NewValidationError("Collection id is required")
	}
	collection, err := s.collections.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, models.NewNotFoundError("Collection", collectionID)
	}
	return collection, nil
}

// authorizeOwner loads the collection and verifies ownership. Not-found wins
// over forbidden: a missing collection never reports as a permission error.
func (s *CollectionService) authorizeOwner(ctx context.Context, collectionID, userID string) (*models.Collection, error) {
	collection, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !collection.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError("You do not own this collection")
	}
	return collection, nil
}
