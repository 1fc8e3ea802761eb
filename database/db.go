package database

import (
	"zadachnik/config"
	"zadachnik/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() error {
	cfg := config.GetConfig()

	var err error
	DB, err = gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate creates or updates the schema, history tables included.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Task{},
		&models.Comment{},
		&models.TaskHistory{},
		&models.CategoryHistory{},
		&models.CommentHistory{},
	)
}

func IsSetupComplete() bool {
	var count int64
	DB.Model(&models.User{}).Count(&count)
	return count > 0
}
