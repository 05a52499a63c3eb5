// Package service implements the use-case layer. Services are stateless
// orchestrators over the repository interfaces; all validation happens here
// before any storage call, and all persistent state lives in the repositories.
package service

import (
	"context"

	"takopi/internal/models"
	"takopi/internal/observability"
	"takopi/internal/repository"
)

// ToggleFollowResult reports the state of a follow edge after a toggle.
// FollowersCount is the followed user's count re-read from the store after
// the write, never derived arithmetically from the previous value.
type ToggleFollowResult struct {
	IsFollowing    bool           `json:"is_following"`
	FollowersCount int64          `json:"followers_count"`
	Follow         *models.Follow `json:"follow,omitempty"`
}

// FollowStats aggregates both directional counts for a user.
type FollowStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// FollowService orchestrates follow/unfollow use-cases.
type FollowService struct {
	follows repository.FollowRepository
}

// NewFollowService creates a new FollowService.
func NewFollowService(follows repository.FollowRepository) *FollowService {
	return &FollowService{follows: follows}
}

// ToggleFollow flips the follow edge between two users: it deletes the edge
// when it exists and creates it when it does not. The read and the write are
// not atomic; with the relational backend a racing duplicate create loses to
// the unique constraint and reports the edge as already present.
func (s *FollowService) ToggleFollow(ctx context.Context, followerID, followingID string) (*ToggleFollowResult, error) {
	if followerID == "" {
		return nil, models.NewValidationError("Follower id is required")
	}
	if followingID == "" {
		return nil, models.NewValidationError("Following id is required")
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if follow.IsSelfFollow() {
		return nil, models.NewValidationError("Cannot follow yourself")
	}

	existing, err := s.follows.GetByUsers(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.follows.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		observability.ToggleOutcomes.WithLabelValues("follow", "removed").Inc()
		count, err := s.follows.CountByFollowing(ctx, followingID)
		if err != nil {
			return nil, err
		}
		return &ToggleFollowResult{IsFollowing: false, FollowersCount: count}, nil
	}

	created := follow
	if err := s.follows.Create(ctx, follow); err != nil {
		// A concurrent toggle won the create; the edge exists either way.
		if models.ErrorCode(err) != models.CodeConflict {
			return nil, err
		}
		created = nil
	}
	observability.ToggleOutcomes.WithLabelValues("follow", "created").Inc()
	count, err := s.follows.CountByFollowing(ctx, followingID)
	if err != nil {
		return nil, err
	}
	return &ToggleFollowResult{IsFollowing: true, FollowersCount: count, Follow: created}, nil
}

// IsFollowing reports whether the follower currently follows the other user.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" {
		return false, models.NewValidationError("Both user ids are required")
	}
	existing, err := s.follows.GetByUsers(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// GetFollowers lists the users following userID, newest first.
func (s *FollowService) GetFollowers(ctx context.Context, userID string, limit, offset int) ([]models.Follow, error) {
	if userID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	return s.follows.GetFollowers(ctx, userID, limit, offset)
}

// GetFollowing lists the users userID follows, newest first.
func (s *FollowService) GetFollowing(ctx context.Context, userID string, limit, offset int) ([]models.Follow, error) {
	if userID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	return s.follows.GetFollowing(ctx, userID, limit, offset)
}

// GetStats returns both follow counts for a user.
func (s *FollowService) GetStats(ctx context.Context, userID string) (*FollowStats, error) {
	if userID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	followers, err := s.follows.CountByFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountByFollower(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FollowStats{Followers: followers, Following: following}, nil
}
