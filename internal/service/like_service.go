package service

import (
	"context"
	"time"

	"takopi/internal/cache"
	"takopi/internal/models"
	"takopi/internal/observability"
	"takopi/internal/repository"
)

const likeCountTTL = 5 * time.Minute

// ToggleLikeResult reports the like state and the fresh count after a toggle.
type ToggleLikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// LikeService orchestrates like/unlike use-cases.
type LikeService struct {
	likes repository.LikeRepository
}

// NewLikeService creates a new LikeService.
func NewLikeService(likes repository.LikeRepository) *LikeService {
	return &LikeService{likes: likes}
}

// ToggleLike flips a user's like on a content item and returns the resulting
// state together with the like count. The count is always re-derived from the
// store after the mutation, never adjusted in memory, so it cannot drift.
func (s *LikeService) ToggleLike(ctx context.Context, userID, contentID string) (*ToggleLikeResult, error) {
	if userID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	if contentID == "" {
		return nil, models.NewValidationError("Content id is required")
	}

	existing, err := s.likes.GetByUserAndContent(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}

	liked := false
	if existing != nil {
		if err := s.likes.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		observability.ToggleOutcomes.WithLabelValues("like", "removed").Inc()
	} else {
		err := s.likes.Create(ctx, &models.Like{UserID: userID, ContentID: contentID})
		if err != nil && models.ErrorCode(err) != models.CodeConflict {
			return nil, err
		}
		// A racing duplicate create still means the like exists.
		liked = true
		observability.ToggleOutcomes.WithLabelValues("like", "created").Inc()
	}

	cache.Invalidate(ctx, cache.ContentLikesKey(contentID))

	count, err := s.likes.CountByContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return &ToggleLikeResult{Liked: liked, LikesCount: count}, nil
}

// GetLikesCount returns the like count for a content item, served from the
// cache when warm.
func (s *LikeService) GetLikesCount(ctx context.Context, contentID string) (int64, error) {
	if contentID == "" {
		return 0, models.NewValidationError("Content id is required")
	}
	var count int64
	err := cache.CacheAside(ctx, cache.ContentLikesKey(contentID), &count, likeCountTTL, func() error {
		var err error
		count, err = s.likes.CountByContent(ctx, contentID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// HasLiked reports whether the user currently likes the content item.
func (s *LikeService) HasLiked(ctx context.Context, userID, contentID string) (bool, error) {
	if userID == "" || contentID == "" {
		return false, models.NewValidationError("User id and content id are required")
	}
	existing, err := s.likes.GetByUserAndContent(ctx, userID, contentID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// GetUserLikes lists a user's likes, newest first.
func (s *LikeService) GetUserLikes(ctx context.Context, userID string, limit, offset int) ([]models.Like, error) {
	if userID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	return s.likes.GetByUser(ctx, userID, limit, offset)
}
