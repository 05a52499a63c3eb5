package database

import "takopi/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Content{},
		&models.Follow{},
		&models.Like{},
		&models.Collection{},
		&models.CollectionItem{},
	}
}
