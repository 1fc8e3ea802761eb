package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"zadachnik/database"
	"zadachnik/models"
)

// ListCategories returns every category, ordered by title.
func ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := database.DB.Order("title").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func GetCategory(id uint) (*models.Category, error) {
	var category models.Category
	err := database.DB.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory validates the input and enforces title uniqueness before
// persisting.
func CreateCategory(in models.CategoryInput) (*models.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Color == "" {
		in.Color = models.DefaultCategoryColor
	}

	title := strings.TrimSpace(in.Title)
	var existing models.Category
	if err := database.DB.Where("title = ?", title).First(&existing).Error; err == nil {
		return nil, ErrConflict
	}

	category := models.Category{Title: title, Color: in.Color}
	if err := database.DB.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateCategory(id uint, in models.CategoryInput) (*models.Category, error) {
	category, err := GetCategory(id)
	if err != nil {
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	var existing models.Category
	if err := database.DB.Where("title = ? AND id != ?", title, id).First(&existing).Error; err == nil {
		return nil, ErrConflict
	}

	category.Title = title
	if in.Color != "" {
		category.Color = in.Color
	}

	if err := database.DB.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category and detaches its tasks (category_id set
// to NULL, no cascade) in one transaction.
func DeleteCategory(id uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		err := tx.First(&category, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		// Plain column update: detaching is the SET NULL referential action,
		// it does not count as a task mutation for the history trail.
		err = tx.Session(&gorm.Session{SkipHooks: true}).
			Model(&models.Task{}).Where("category_id = ?", id).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}

		return tx.Delete(&category).Error
	})
}
