package database

import (
	"tekblog/internal/models"

	"gorm.io/gorm"
)

// Migrate applies the schema for every persisted model. Join tables are
// explicit models so their unique pair indexes are created here too.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Credential{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Save{},
		&models.Tag{},
		&models.PostTag{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Report{},
	)
}
