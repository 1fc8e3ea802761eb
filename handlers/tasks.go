package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"zadachnik/middleware"
	"zadachnik/models"
	"zadachnik/services"
)

const taskNotFoundMsg = "Задача не найдена или не принадлежит пользователю"

func taskResponses(tasks []models.Task) []models.TaskResponse {
	responses := make([]models.TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = tasks[i].ToResponse()
	}
	return responses
}

func parseTaskID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid task ID")
	}
	return uint(id), nil
}

func intQuery(c *fiber.Ctx, name string) *int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return &v
		}
	}
	return nil
}

func timeQuery(c *fiber.Ctx, name, layout string) *time.Time {
	if raw := c.Query(name); raw != "" {
		if v, err := time.Parse(layout, raw); err == nil {
			return &v
		}
	}
	return nil
}

// ListTasks returns the requester's tasks with optional filters: status,
// priority (exact/gte/lte), due_date (day, gte, lte), search over
// title/description/category and a whitelisted ordering.
func ListTasks(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	params := services.TaskListParams{
		Status:      c.Query("status"),
		Priority:    intQuery(c, "priority"),
		PriorityGTE: intQuery(c, "priority_gte"),
		PriorityLTE: intQuery(c, "priority_lte"),
		DueDate:     timeQuery(c, "due_date", "2006-01-02"),
		DueDateGTE:  timeQuery(c, "due_date_gte", time.RFC3339),
		DueDateLTE:  timeQuery(c, "due_date_lte", time.RFC3339),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
	}

	tasks, err := services.TasksForUser(userID, params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch tasks",
		})
	}

	return c.JSON(taskResponses(tasks))
}

// GetTask returns a single owned task with its comments count.
func GetTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	task, err := services.GetTask(userID, taskID)
	if err != nil {
		return serviceError(c, err, taskNotFoundMsg, "")
	}

	response := task.ToResponse()
	if count, err := services.CommentsCountForTask(task.ID); err == nil {
		response.CommentsCount = count
	}

	return c.JSON(response)
}

// CreateTask creates a task owned by the requester.
func CreateTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var input models.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	task, err := services.CreateTask(userID, input, time.Now(), true)
	if err != nil {
		return serviceError(c, err, taskNotFoundMsg, "")
	}

	return c.Status(fiber.StatusCreated).JSON(task.ToResponse())
}

// UpdateTask replaces the mutable fields of an owned task.
func UpdateTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	var input models.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	task, err := services.UpdateTask(userID, taskID, input, time.Now(), true)
	if err != nil {
		return serviceError(c, err, taskNotFoundMsg, "")
	}

	return c.JSON(task.ToResponse())
}

// DeleteTask deletes an owned task and its comments.
func DeleteTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	if err := services.DeleteTask(userID, taskID); err != nil {
		return serviceError(c, err, taskNotFoundMsg, "")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListOverdueTasks returns active tasks past their due date.
func ListOverdueTasks(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	tasks, err := services.OverdueTasks(userID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch tasks",
		})
	}

	return c.JSON(taskResponses(tasks))
}

// ListFilteredTasks returns the active-filtered union set.
func ListFilteredTasks(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	tasks, err := services.FilteredTasks(userID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch tasks",
		})
	}

	return c.JSON(taskResponses(tasks))
}

// MarkTaskComplete transitions a task into the completed status; a second
// attempt yields a conflict.
func MarkTaskComplete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	task, err := services.MarkComplete(userID, taskID)
	if err != nil {
		return serviceError(c, err, taskNotFoundMsg, "Задача уже выполнена")
	}

	return c.JSON(task.ToResponse())
}

// GetTaskStats returns per-status task counts (admin only).
func GetTaskStats(c *fiber.Ctx) error {
	stats, err := services.StatusCounts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}
	return c.JSON(stats)
}
