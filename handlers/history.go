package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"zadachnik/database"
	"zadachnik/models"
)

// ListHistory returns the append-only audit trail of one entity type (admin
// only). Supported entities: tasks, categories, comments. Optional filters:
// id (the live record), change (create/update/delete); paginated.
func ListHistory(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	change := c.Query("change")
	idStr := c.Query("id")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	var model interface{}
	var dest interface{}
	var idColumn string

	switch c.Params("entity") {
	case "tasks":
		model, dest, idColumn = &models.TaskHistory{}, &[]models.TaskHistory{}, "task_id"
	case "categories":
		model, dest, idColumn = &models.CategoryHistory{}, &[]models.CategoryHistory{}, "category_id"
	case "comments":
		model, dest, idColumn = &models.CommentHistory{}, &[]models.CommentHistory{}, "comment_id"
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown history entity",
		})
	}

	query := database.DB.Model(model)

	if change != "" {
		query = query.Where("change_type = ?", change)
	}
	if idStr != "" {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			query = query.Where(idColumn+" = ?", id)
		}
	}

	var total int64
	query.Count(&total)

	if result := query.Order("changed_at DESC").Offset(offset).Limit(limit).Find(dest); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch history",
		})
	}

	return c.JSON(fiber.Map{
		"records": dest,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetHistoryChangeTypes returns the change kinds available for filtering.
func GetHistoryChangeTypes(c *fiber.Ctx) error {
	return c.JSON([]string{
		string(models.HistoryCreate),
		string(models.HistoryUpdate),
		string(models.HistoryDelete),
	})
}
