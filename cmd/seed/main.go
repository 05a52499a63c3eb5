// Command seed populates the configured storage backend with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"takopi/internal/config"
	"takopi/internal/database"
	"takopi/internal/filestore"
	"takopi/internal/repository"
	"takopi/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "number of demo users to create")
	numContent := flag.Int("content", 30, "number of demo content items to create")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "store plaintext demo passwords (faster, dev only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("Refusing to seed a production environment")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	var store *filestore.Store
	if cfg.StorageMode == config.StorageModeLocal {
		store, err = filestore.Open(cfg.StorageDir)
		if err != nil {
			log.Fatalf("File store open failed: %v", err)
		}
	}

	repos, err := repository.NewRepositories(cfg, db, store)
	if err != nil {
		log.Fatalf("Repository setup failed: %v", err)
	}

	result, err := seed.Seed(context.Background(), repos, seed.Options{
		NumUsers:   *numUsers,
		NumContent: *numContent,
		SkipBcrypt: *skipBcrypt,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Done: %d users, %d content items (storage mode %s)",
		len(result.Users), len(result.Contents), cfg.StorageMode)
}
