package seed

import (
	"context"
	"fmt"
	"log"

	"takopi/internal/models"
	"takopi/internal/repository"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers   int
	NumContent int
	// SkipBcrypt stores plaintext demo passwords; much faster for large
	// seeds, development only.
	SkipBcrypt bool
}

// withDefaults fills unset counts with sensible demo sizes.
func (o Options) withDefaults() Options {
	if o.NumUsers <= 0 {
		o.NumUsers = 10
	}
	if o.NumContent <= 0 {
		o.NumContent = o.NumUsers * 3
	}
	return o
}

// Result reports what a Seed run created.
type Result struct {
	Users    []*models.User
	Contents []*models.Content
}

// Seed populates the configured storage with a demo marketplace: users,
// content, a follow mesh, likes, and a collection per user.
func Seed(ctx context.Context, repos *repository.Repositories, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	f := NewFactory(repos, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	contents := make([]*models.Content, 0, opts.NumContent)
	for i := 0; i < opts.NumContent; i++ {
		creator := users[f.rng.Intn(len(users))]
		content, err := f.CreateContent(ctx, creator)
		if err != nil {
			return nil, fmt.Errorf("seed content: %w", err)
		}
		contents = append(contents, content)
	}
	log.Printf("seeded %d content items", len(contents))

	// Follow mesh: each user follows roughly a third of the others.
	follows := 0
	for _, follower := range users {
		for _, following := range users {
			if follower.ID == following.ID || f.rng.Intn(3) != 0 {
				continue
			}
			if err := f.CreateFollow(ctx, follower, following); err != nil {
				return nil, fmt.Errorf("seed follow: %w", err)
			}
			follows++
		}
	}
	log.Printf("seeded %d follows", follows)

	likes := 0
	for _, user := range users {
		for _, content := range contents {
			if f.rng.Intn(4) != 0 {
				continue
			}
			if err := f.CreateLike(ctx, user, content); err != nil {
				return nil, fmt.Errorf("seed like: %w", err)
			}
			likes++
		}
	}
	log.Printf("seeded %d likes", likes)

	for _, user := range users {
		picks := make([]*models.Content, 0, 3)
		for i := 0; i < 3 && len(contents) > 0; i++ {
			picks = append(picks, contents[f.rng.Intn(len(contents))])
		}
		if _, err := f.CreateCollection(ctx, user, picks); err != nil {
			return nil, fmt.Errorf("seed collection: %w", err)
		}
	}
	log.Printf("seeded %d collections", len(users))

	return &Result{Users: users, Contents: contents}, nil
}
