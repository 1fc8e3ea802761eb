package services

import (
	"time"

	"github.com/xuri/excelize/v2"

	"zadachnik/database"
	"zadachnik/models"
)

const (
	exportSheet      = "Задачи"
	exportDateFormat = "02-01-2006"
	exportTimeFormat = "02-01-2006 15:04"
)

// ExportMinPriority restricts the export row set server-side regardless of
// any other filter.
const ExportMinPriority = models.PriorityHigh

var exportHeaders = []string{
	"ID",
	"Название",
	"Описание",
	"Владелец",
	"Категория",
	"Статус",
	"Приоритет",
	"Срок выполнения",
	"Дата создания",
	"Дата обновления",
}

// BuildTaskExport renders the high-priority task set into an XLSX workbook:
// localized status labels, dates as DD-MM-YYYY, timestamps as
// DD-MM-YYYY HH:MM.
func BuildTaskExport() (*excelize.File, error) {
	var tasks []models.Task
	err := database.DB.Preload("Category").Preload("User").
		Where("priority >= ?", ExportMinPriority).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, task := range tasks {
		values := exportRow(&task)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func exportRow(task *models.Task) []interface{} {
	categoryTitle := ""
	if task.Category != nil {
		categoryTitle = task.Category.Title
	}

	return []interface{}{
		task.ID,
		task.Title,
		task.Description,
		task.User.Username,
		categoryTitle,
		task.Status.Label(),
		task.Priority,
		formatExportDate(task.DueDate),
		task.CreationDate.Format(exportTimeFormat),
		task.UpdateDate.Format(exportTimeFormat),
	}
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateFormat)
}
