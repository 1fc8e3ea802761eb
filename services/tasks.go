package services

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"zadachnik/database"
	"zadachnik/models"
)

// WorkCategoryTitle is the category excluded from the low-priority branch of
// the filtered-tasks query.
const WorkCategoryTitle = "Работа"

// TaskListParams are the optional filters of the task list API.
type TaskListParams struct {
	Status      string
	Priority    *int
	PriorityGTE *int
	PriorityLTE *int
	DueDate     *time.Time // matches the calendar day
	DueDateGTE  *time.Time
	DueDateLTE  *time.Time
	Search      string
	Ordering    string
}

var orderings = map[string]string{
	"due_date":       "due_date",
	"-due_date":      "due_date DESC",
	"priority":       "priority",
	"-priority":      "priority DESC",
	"creation_date":  "creation_date",
	"-creation_date": "creation_date DESC",
}

// TasksForUser returns the requester's tasks, optionally filtered and
// ordered. Without an ordering the result is unordered (API default); the
// page view passes "-due_date".
func TasksForUser(userID uint, p TaskListParams) ([]models.Task, error) {
	q := database.DB.Model(&models.Task{}).
		Preload("Category").Preload("User").
		Where("tasks.user_id = ?", userID)

	if p.Status != "" {
		q = q.Where("tasks.status = ?", p.Status)
	}
	if p.Priority != nil {
		q = q.Where("tasks.priority = ?", *p.Priority)
	}
	if p.PriorityGTE != nil {
		q = q.Where("tasks.priority >= ?", *p.PriorityGTE)
	}
	if p.PriorityLTE != nil {
		q = q.Where("tasks.priority <= ?", *p.PriorityLTE)
	}
	if p.DueDate != nil {
		day := p.DueDate.Truncate(24 * time.Hour)
		q = q.Where("tasks.due_date >= ? AND tasks.due_date < ?", day, day.Add(24*time.Hour))
	}
	if p.DueDateGTE != nil {
		q = q.Where("tasks.due_date >= ?", *p.DueDateGTE)
	}
	if p.DueDateLTE != nil {
		q = q.Where("tasks.due_date <= ?", *p.DueDateLTE)
	}
	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		q = q.Select("tasks.*").
			Joins("LEFT JOIN categories ON categories.id = tasks.category_id").
			Where("tasks.title LIKE ? OR tasks.description LIKE ? OR categories.title LIKE ?",
				pattern, pattern, pattern)
	}
	if order, ok := orderings[p.Ordering]; ok {
		q = q.Order(order)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches a single task scoped to the requester. A task owned by
// someone else is reported exactly like a missing one.
func GetTask(userID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := database.DB.Preload("Category").Preload("User").
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask validates the input and persists a new task owned by userID.
// strict applies the API rules (due date must not be in the past); the web
// form path passes strict=false.
func CreateTask(userID uint, in models.TaskInput, now time.Time, strict bool) (*models.Task, error) {
	in.ApplyDefaults()
	if err := validateTaskInput(in, now, strict); err != nil {
		return nil, err
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CategoryID:  in.CategoryID,
		UserID:      userID,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask re-validates and replaces the mutable fields of an owned task.
// The creation date is never touched; the update date refreshes on save.
func UpdateTask(userID, taskID uint, in models.TaskInput, now time.Time, strict bool) (*models.Task, error) {
	task, err := GetTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	in.ApplyDefaults()
	if err := validateTaskInput(in, now, strict); err != nil {
		return nil, err
	}

	task.Title = in.Title
	task.Description = in.Description
	task.Status = in.Status
	task.Priority = in.Priority
	task.DueDate = in.DueDate
	task.CategoryID = in.CategoryID
	// Save would restore category_id from the preloaded association,
	// losing a detach; persist the column value as given.
	task.Category = nil

	if err := database.DB.Save(task).Error; err != nil {
		return nil, err
	}
	return GetTask(userID, taskID)
}

func validateTaskInput(in models.TaskInput, now time.Time, strict bool) error {
	if strict {
		return in.Validate(now)
	}
	return in.ValidateForm()
}

// DeleteTask removes an owned task and its comments in one transaction.
// Comments are deleted one by one so each leaves a history snapshot.
func DeleteTask(userID, taskID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var comments []models.Comment
		if err := tx.Where("task_id = ?", task.ID).Find(&comments).Error; err != nil {
			return err
		}
		for i := range comments {
			if err := tx.Delete(&comments[i]).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&task).Error
	})
}

// MarkComplete transitions an owned task into the completed status. A task
// that is already completed yields ErrConflict and stays untouched.
func MarkComplete(userID, taskID uint) (*models.Task, error) {
	task, err := GetTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == models.StatusCompleted {
		return nil, ErrConflict
	}

	task.Status = models.StatusCompleted
	if err := database.DB.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// OverdueTasks returns the requester's active tasks whose due date has
// passed. Completed tasks are never overdue.
func OverdueTasks(userID uint, now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := database.DB.Preload("Category").Preload("User").
		Where("user_id = ? AND due_date < ? AND status IN ?",
			userID, now, []models.TaskStatus{models.StatusPending, models.StatusInProgress}).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// AllOverdueTasks returns overdue active tasks across every user (report
// command).
func AllOverdueTasks(now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := database.DB.Preload("User").
		Where("due_date < ? AND status IN ?",
			now, []models.TaskStatus{models.StatusPending, models.StatusInProgress}).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FilteredTasks returns the deduplicated union of two sets:
//
//   - active high/critical-priority tasks that are not overdue
//   - low-priority pending tasks outside the "Работа" category
//     (tasks without a category qualify)
func FilteredTasks(userID uint, now time.Time) ([]models.Task, error) {
	active := []models.TaskStatus{models.StatusPending, models.StatusInProgress}

	var main []models.Task
	err := database.DB.Preload("Category").Preload("User").
		Where("user_id = ?", userID).
		Where("status IN ?", active).
		Where("priority >= ?", models.PriorityHigh).
		Not("status = ?", models.StatusCompleted).
		Not("due_date < ?", now).
		Find(&main).Error
	if err != nil {
		return nil, err
	}

	var extra []models.Task
	err = database.DB.Preload("Category").Preload("User").
		Select("tasks.*").
		Joins("LEFT JOIN categories ON categories.id = tasks.category_id").
		Where("tasks.user_id = ?", userID).
		Where("tasks.status = ?", models.StatusPending).
		Where("tasks.priority <= ?", models.PriorityMedium).
		Where("categories.title IS NULL OR categories.title <> ?", WorkCategoryTitle).
		Find(&extra).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(main)+len(extra))
	union := make([]models.Task, 0, len(main)+len(extra))
	for _, t := range append(main, extra...) {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		union = append(union, t)
	}
	sort.Slice(union, func(i, j int) bool { return union[i].ID < union[j].ID })

	return union, nil
}

// TaskStats holds per-status task counts across all users.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

func StatusCounts() (*TaskStats, error) {
	var stats TaskStats
	counts := []struct {
		status models.TaskStatus
		dest   *int64
	}{
		{models.StatusPending, &stats.Pending},
		{models.StatusInProgress, &stats.InProgress},
		{models.StatusCompleted, &stats.Completed},
	}

	if err := database.DB.Model(&models.Task{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		err := database.DB.Model(&models.Task{}).Where("status = ?", c.status).Count(c.dest).Error
		if err != nil {
			return nil, err
		}
	}
	return &stats, nil
}
