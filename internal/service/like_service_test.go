package service

import (
	"context"
	"errors"
	"testing"

	"takopi/internal/filestore"
	"takopi/internal/models"
	"takopi/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLikeRepo struct {
	createFn              func(ctx context.Context, like *models.Like) error
	getByUserAndContentFn func(ctx context.Context, userID, contentID string) (*models.Like, error)
	getByUserFn           func(ctx context.Context, userID string, limit, offset int) ([]models.Like, error)
	countByContentFn      func(ctx context.Context, contentID string) (int64, error)
	deleteFn              func(ctx context.Context, id string) error
}

func (m *mockLikeRepo) Create(ctx context.Context, l *models.Like) error { return m.createFn(ctx, l) }
func (m *mockLikeRepo) GetByUserAndContent(ctx context.Context, u, c string) (*models.Like, error) {
	return m.getByUserAndContentFn(ctx, u, c)
}
func (m *mockLikeRepo) GetByUser(ctx context.Context, u string, l, o int) ([]models.Like, error) {
	return m.getByUserFn(ctx, u, l, o)
}
func (m *mockLikeRepo) CountByContent(ctx context.Context, c string) (int64, error) {
	return m.countByContentFn(ctx, c)
}
func (m *mockLikeRepo) Delete(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }

func newFileLikes(t *testing.T) repository.LikeRepository {
	t.Helper()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	return repository.NewLikeFileRepository(store)
}

func TestToggleLikeValidation(t *testing.T) {
	svc := NewLikeService(&mockLikeRepo{})
	ctx := context.Background()

	result, err := svc.ToggleLike(ctx, "", "c1")
	assert.Nil(t, result)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	result, err = svc.ToggleLike(ctx, "u1", "")
	assert.Nil(t, result)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestToggleLikeIdempotentUnlike(t *testing.T) {
	// Two toggles in sequence return liked=true then liked=false, and the
	// count ends where it started.
	svc := NewLikeService(newFileLikes(t))
	ctx := context.Background()

	before, err := svc.GetLikesCount(ctx, "content-1")
	require.NoError(t, err)

	first, err := svc.ToggleLike(ctx, "u1", "content-1")
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, before+1, first.LikesCount)

	second, err := svc.ToggleLike(ctx, "u1", "content-1")
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, before, second.LikesCount)
}

func TestToggleLikeCountIsRederived(t *testing.T) {
	// The returned count comes from a fresh count query, not from adjusting
	// a number in memory: other users' likes are reflected immediately.
	svc := NewLikeService(newFileLikes(t))
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "u1", "content-1")
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, "u2", "content-1")
	require.NoError(t, err)

	third, err := svc.ToggleLike(ctx, "u3", "content-1")
	require.NoError(t, err)
	assert.True(t, third.Liked)
	assert.Equal(t, int64(3), third.LikesCount)

	unliked, err := svc.ToggleLike(ctx, "u2", "content-1")
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, int64(2), unliked.LikesCount)
}

func TestToggleLikeConcurrentCreateLoses(t *testing.T) {
	repo := &mockLikeRepo{
		getByUserAndContentFn: func(context.Context, string, string) (*models.Like, error) {
			return nil, nil
		},
		createFn: func(context.Context, *models.Like) error {
			return models.NewConflictError("Content already liked")
		},
		countByContentFn: func(context.Context, string) (int64, error) {
			return 1, nil
		},
	}
	svc := NewLikeService(repo)

	result, err := svc.ToggleLike(context.Background(), "u1", "content-1")
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.LikesCount)
}

func TestToggleLikeReadErrorPropagates(t *testing.T) {
	repo := &mockLikeRepo{
		getByUserAndContentFn: func(context.Context, string, string) (*models.Like, error) {
			return nil, models.NewInternalError(errors.New("index corrupted"))
		},
	}
	svc := NewLikeService(repo)

	result, err := svc.ToggleLike(context.Background(), "u1", "content-1")
	assert.Nil(t, result)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
}

func TestHasLikedAndUserLikes(t *testing.T) {
	svc := NewLikeService(newFileLikes(t))
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "u1", "content-1")
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, "u1", "content-2")
	require.NoError(t, err)

	liked, err := svc.HasLiked(ctx, "u1", "content-1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.HasLiked(ctx, "u2", "content-1")
	require.NoError(t, err)
	assert.False(t, liked)

	likes, err := svc.GetUserLikes(ctx, "u1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, likes, 2)
}
