package models

import (
	"gorm.io/gorm"
)

const DefaultCategoryColor = "#FFFFFF"

// ColorChoice pairs a stored hex value with its display name.
type ColorChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryColors is the fixed palette a category may use.
var CategoryColors = []ColorChoice{
	{"#FF0000", "Красный"},
	{"#00FF00", "Зеленый"},
	{"#FFFF00", "Желтый"},
	{"#0000FF", "Синий"},
	{"#FFA500", "Оранжевый"},
	{"#800080", "Фиолетовый"},
	{"#FFC0CB", "Розовый"},
	{"#A52A2A", "Коричневый"},
	{"#808080", "Серый"},
	{"#FFFFFF", "Белый"},
}

func IsCategoryColor(value string) bool {
	for _, c := range CategoryColors {
		if c.Value == value {
			return true
		}
	}
	return false
}

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"uniqueIndex;not null;size:50" json:"title"`
	Color string `gorm:"size:7;not null;default:#FFFFFF" json:"color"`
}

// CategoryInput is used for creating/updating categories
type CategoryInput struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

func (cat *Category) AfterCreate(tx *gorm.DB) error {
	return tx.Create(newCategorySnapshot(cat, HistoryCreate)).Error
}

func (cat *Category) AfterUpdate(tx *gorm.DB) error {
	return tx.Create(newCategorySnapshot(cat, HistoryUpdate)).Error
}

func (cat *Category) AfterDelete(tx *gorm.DB) error {
	return tx.Create(newCategorySnapshot(cat, HistoryDelete)).Error
}
