package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zadachnik/database"
	"zadachnik/models"
)

// setupTestDB points the package-global connection at a fresh in-memory
// database for one test.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	database.DB = db
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", Role: models.RoleUser}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return &user
}

func createTestCategory(t *testing.T, title string) *models.Category {
	t.Helper()
	category := models.Category{Title: title, Color: models.DefaultCategoryColor}
	if err := database.DB.Create(&category).Error; err != nil {
		t.Fatalf("create category %q: %v", title, err)
	}
	return &category
}

// createTestTask persists a task directly, bypassing input validation, so
// tests can set up completed or past-due states.
func createTestTask(t *testing.T, userID uint, title string, status models.TaskStatus, priority int, due time.Time, categoryID *uint) *models.Task {
	t.Helper()
	task := models.Task{
		Title:      title,
		Status:     status,
		Priority:   priority,
		DueDate:    due,
		CategoryID: categoryID,
		UserID:     userID,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return &task
}

func taskIDs(tasks []models.Task) map[uint]bool {
	ids := make(map[uint]bool, len(tasks))
	for _, task := range tasks {
		ids[task.ID] = true
	}
	return ids
}
