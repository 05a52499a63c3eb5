// Package seed provides helpers to create demo data for development and
// testing. Social entities are written through the repository layer so the
// same seeder works against either storage backend.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"takopi/internal/models"
	"takopi/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// Factory builds domain entities and persists them via the repositories.
type Factory struct {
	repos *repository.Repositories
	opts  Options
	rng   *rand.Rand
}

// NewFactory creates a new Factory over the given repositories.
func NewFactory(repos *repository.Repositories, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		repos: repos,
		opts:  opts,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var contentKinds = []models.ContentKind{
	models.ContentKindModel3D,
	models.ContentKindTexture,
	models.ContentKindMusic,
	models.ContentKindAvatar,
	models.ContentKindImage,
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Bio:       gofakeit.Sentence(10),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateContent constructs and persists a sample content item for the user.
func (f *Factory) CreateContent(ctx context.Context, user *models.User, overrides ...func(*models.Content)) (*models.Content, error) {
	kind := contentKinds[f.rng.Intn(len(contentKinds))]
	content := &models.Content{
		UserID:     user.ID,
		Title:      gofakeit.ProductName(),
		Kind:       kind,
		PriceCents: int64(gofakeit.Number(0, 5000)),
		FileURL:    fmt.Sprintf("https://cdn.takopi.dev/%s/%s", kind, gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(content)
	}

	if err := f.repos.Contents.Create(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

// CreateFollow persists a follow edge, ignoring duplicates so random meshes
// can retry pairs freely.
func (f *Factory) CreateFollow(ctx context.Context, follower, following *models.User) error {
	err := f.repos.Follows.Create(ctx, &models.Follow{
		FollowerID:  follower.ID,
		FollowingID: following.ID,
	})
	if err != nil && models.ErrorCode(err) == models.CodeConflict {
		return nil
	}
	return err
}

// CreateLike persists a like, ignoring duplicates.
func (f *Factory) CreateLike(ctx context.Context, user *models.User, content *models.Content) error {
	err := f.repos.Likes.Create(ctx, &models.Like{
		UserID:    user.ID,
		ContentID: content.ID,
	})
	if err != nil && models.ErrorCode(err) == models.CodeConflict {
		return nil
	}
	return err
}

// CreateCollection persists a collection with a few of the given content
// items in it.
func (f *Factory) CreateCollection(ctx context.Context, owner *models.User, contents []*models.Content) (*models.Collection, error) {
	collection := &models.Collection{
		UserID:      owner.ID,
		Title:       gofakeit.HipsterWord(),
		Description: gofakeit.Sentence(8),
		IsPublic:    f.rng.Intn(2) == 0,
	}
	if err := f.repos.Collections.Create(ctx, collection); err != nil {
		return nil, err
	}

	for _, content := range contents {
		err := f.repos.Collections.AddItem(ctx, &models.CollectionItem{
			CollectionID: collection.ID,
			ContentID:    content.ID,
		})
		if err != nil && models.ErrorCode(err) != models.CodeConflict {
			return nil, err
		}
	}
	return collection, nil
}
