package repository

import (
	"context"
	"testing"

	"takopi/internal/config"
	"takopi/internal/database"
	"takopi/internal/filestore"
	"takopi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func newTestStore(t *testing.T) *filestore.Store {
	t.Helper()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	return store
}

type backendCase struct {
	name  string
	repos func(t *testing.T) *Repositories
}

// backends yields one Repositories bundle per storage mode so every
// conformance test runs against both implementations.
func backends() []backendCase {
	return []backendCase{
		{
			name: "database",
			repos: func(t *testing.T) *Repositories {
				cfg := &config.Config{StorageMode: config.StorageModeDatabase}
				repos, err := NewRepositories(cfg, newTestDB(t), nil)
				require.NoError(t, err)
				return repos
			},
		},
		{
			name: "local",
			repos: func(t *testing.T) *Repositories {
				cfg := &config.Config{StorageMode: config.StorageModeLocal}
				repos, err := NewRepositories(cfg, newTestDB(t), newTestStore(t))
				require.NoError(t, err)
				return repos
			},
		},
	}
}

func TestNewRepositoriesUnknownMode(t *testing.T) {
	cfg := &config.Config{StorageMode: "mongo"}
	repos, err := NewRepositories(cfg, newTestDB(t), nil)
	assert.Error(t, err)
	assert.Nil(t, repos)
}

func TestNewRepositoriesLocalRequiresStore(t *testing.T) {
	cfg := &config.Config{StorageMode: config.StorageModeLocal}
	repos, err := NewRepositories(cfg, newTestDB(t), nil)
	assert.Error(t, err)
	assert.Nil(t, repos)
}

func TestFollowRepositoryConformance(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			repos := bc.repos(t)

			t.Run("create and resolve by users", func(t *testing.T) {
				follow := &models.Follow{FollowerID: "alice", FollowingID: "bob"}
				require.NoError(t, repos.Follows.Create(ctx, follow))
				assert.NotEmpty(t, follow.ID)

				got, err := repos.Follows.GetByUsers(ctx, "alice", "bob")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, follow.ID, got.ID)
			})

			t.Run("duplicate pair conflicts", func(t *testing.T) {
				dup := &models.Follow{FollowerID: "alice", FollowingID: "bob"}
				err := repos.Follows.Create(ctx, dup)
				require.Error(t, err)
				assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
			})

			t.Run("absent pair resolves to nil", func(t *testing.T) {
				got, err := repos.Follows.GetByUsers(ctx, "bob", "alice")
				require.NoError(t, err)
				assert.Nil(t, got)
			})

			t.Run("counts both directions", func(t *testing.T) {
				require.NoError(t, repos.Follows.Create(ctx, &models.Follow{FollowerID: "carol", FollowingID: "bob"}))

				followers, err := repos.Follows.CountByFollowing(ctx, "bob")
				require.NoError(t, err)
				assert.Equal(t, int64(2), followers)

				following, err := repos.Follows.CountByFollower(ctx, "alice")
				require.NoError(t, err)
				assert.Equal(t, int64(1), following)
			})

			t.Run("lists followers and following", func(t *testing.T) {
				followers, err := repos.Follows.GetFollowers(ctx, "bob", 10, 0)
				require.NoError(t, err)
				assert.Len(t, followers, 2)

				following, err := repos.Follows.GetFollowing(ctx, "alice", 10, 0)
				require.NoError(t, err)
				assert.Len(t, following, 1)
			})

			t.Run("delete removes the edge", func(t *testing.T) {
				got, err := repos.Follows.GetByUsers(ctx, "alice", "bob")
				require.NoError(t, err)
				require.NotNil(t, got)

				require.NoError(t, repos.Follows.Delete(ctx, got.ID))

				gone, err := repos.Follows.GetByUsers(ctx, "alice", "bob")
				require.NoError(t, err)
				assert.Nil(t, gone)
			})

			t.Run("same pair can be recreated after delete", func(t *testing.T) {
				err := repos.Follows.Create(ctx, &models.Follow{FollowerID: "alice", FollowingID: "bob"})
				assert.NoError(t, err)
			})
		})
	}
}

func TestLikeRepositoryConformance(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			repos := bc.repos(t)

			t.Run("create and count", func(t *testing.T) {
				require.NoError(t, repos.Likes.Create(ctx, &models.Like{UserID: "alice", ContentID: "song-1"}))
				require.NoError(t, repos.Likes.Create(ctx, &models.Like{UserID: "bob", ContentID: "song-1"}))

				count, err := repos.Likes.CountByContent(ctx, "song-1")
				require.NoError(t, err)
				assert.Equal(t, int64(2), count)
			})

			t.Run("duplicate like conflicts", func(t *testing.T) {
				err := repos.Likes.Create(ctx, &models.Like{UserID: "alice", ContentID: "song-1"})
				require.Error(t, err)
				assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
			})

			t.Run("absent like resolves to nil", func(t *testing.T) {
				got, err := repos.Likes.GetByUserAndContent(ctx, "alice", "song-2")
				require.NoError(t, err)
				assert.Nil(t, got)
			})

			t.Run("lists a user's likes", func(t *testing.T) {
				require.NoError(t, repos.Likes.Create(ctx, &models.Like{UserID: "alice", ContentID: "song-3"}))

				likes, err := repos.Likes.GetByUser(ctx, "alice", 10, 0)
				require.NoError(t, err)
				assert.Len(t, likes, 2)
			})

			t.Run("delete drops the count", func(t *testing.T) {
				got, err := repos.Likes.GetByUserAndContent(ctx, "bob", "song-1")
				require.NoError(t, err)
				require.NotNil(t, got)

				require.NoError(t, repos.Likes.Delete(ctx, got.ID))

				count, err := repos.Likes.CountByContent(ctx, "song-1")
				require.NoError(t, err)
				assert.Equal(t, int64(1), count)
			})
		})
	}
}

func TestCollectionRepositoryConformance(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			repos := bc.repos(t)

			collection := &models.Collection{UserID: "alice", Title: "Synthwave", IsPublic: true}
			require.NoError(t, repos.Collections.Create(ctx, collection))
			require.NotEmpty(t, collection.ID)

			t.Run("resolve by id", func(t *testing.T) {
				got, err := repos.Collections.GetByID(ctx, collection.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "Synthwave", got.Title)
				assert.True(t, got.IsPublic)
			})

			t.Run("absent id resolves to nil", func(t *testing.T) {
				got, err := repos.Collections.GetByID(ctx, "no-such-id")
				require.NoError(t, err)
				assert.Nil(t, got)
			})

			t.Run("update persists new fields", func(t *testing.T) {
				collection.Title = "Synthwave Essentials"
				collection.IsPublic = false
				require.NoError(t, repos.Collections.Update(ctx, collection))

				got, err := repos.Collections.GetByID(ctx, collection.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "Synthwave Essentials", got.Title)
				assert.False(t, got.IsPublic)
			})

			t.Run("add item and duplicate conflicts", func(t *testing.T) {
				item := &models.CollectionItem{CollectionID: collection.ID, ContentID: "track-1"}
				require.NoError(t, repos.Collections.AddItem(ctx, item))

				err := repos.Collections.AddItem(ctx, &models.CollectionItem{CollectionID: collection.ID, ContentID: "track-1"})
				require.Error(t, err)
				assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

				count, err := repos.Collections.CountItems(ctx, collection.ID)
				require.NoError(t, err)
				assert.Equal(t, int64(1), count)
			})

			t.Run("same content may live in two collections", func(t *testing.T) {
				other := &models.Collection{UserID: "alice", Title: "Backup"}
				require.NoError(t, repos.Collections.Create(ctx, other))
				assert.NoError(t, repos.Collections.AddItem(ctx, &models.CollectionItem{CollectionID: other.ID, ContentID: "track-1"}))
			})

			t.Run("remove item is idempotent", func(t *testing.T) {
				removed, err := repos.Collections.RemoveItem(ctx, collection.ID, "track-1")
				require.NoError(t, err)
				assert.True(t, removed)

				removed, err = repos.Collections.RemoveItem(ctx, collection.ID, "track-1")
				require.NoError(t, err)
				assert.False(t, removed)
			})

			t.Run("delete cascades to items", func(t *testing.T) {
				require.NoError(t, repos.Collections.AddItem(ctx, &models.CollectionItem{CollectionID: collection.ID, ContentID: "track-2"}))
				require.NoError(t, repos.Collections.Delete(ctx, collection.ID))

				got, err := repos.Collections.GetByID(ctx, collection.ID)
				require.NoError(t, err)
				assert.Nil(t, got)

				count, err := repos.Collections.CountItems(ctx, collection.ID)
				require.NoError(t, err)
				assert.Equal(t, int64(0), count)
			})

			t.Run("owner and public listings", func(t *testing.T) {
				require.NoError(t, repos.Collections.Create(ctx, &models.Collection{UserID: "bob", Title: "Public", IsPublic: true}))
				require.NoError(t, repos.Collections.Create(ctx, &models.Collection{UserID: "bob", Title: "Private"}))

				mine, err := repos.Collections.GetByOwner(ctx, "bob", 10, 0)
				require.NoError(t, err)
				assert.Len(t, mine, 2)

				public, err := repos.Collections.GetPublic(ctx, 10, 0)
				require.NoError(t, err)
				for _, c := range public {
					assert.True(t, c.IsPublic)
				}
			})
		})
	}
}
