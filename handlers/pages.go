package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"zadachnik/config"
	"zadachnik/middleware"
	"zadachnik/models"
	"zadachnik/services"
)

// Server-rendered pages. They reuse the same services as the API but follow
// the form-path rules: comment text only needs to be non-empty and the
// due-date-in-the-past check is skipped.

const formDueDateLayout = "2006-01-02T15:04"

func pageData(c *fiber.Ctx, extra fiber.Map) fiber.Map {
	cfg := config.GetConfig()
	data := fiber.Map{
		"SiteHeader": cfg.SiteHeader,
		"Username":   middleware.GetUsername(c),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func setAuthCookie(c *fiber.Ctx, token string) {
	cfg := config.GetConfig()
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(cfg.SessionDurationHours) * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func HomePage(c *fiber.Ctx) error {
	return c.Render("home", pageData(c, nil))
}

func RegisterPage(c *fiber.Ctx) error {
	return c.Render("register", pageData(c, nil))
}

func RegisterSubmit(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	password2 := c.FormValue("password2")

	renderError := func(msg string) error {
		return c.Render("register", pageData(c, fiber.Map{"Error": msg}))
	}

	if username == "" || password == "" || password2 == "" {
		return renderError("Заполните все поля")
	}
	if password != password2 {
		return renderError("Пароли не совпадают")
	}

	user, err := createAccount(username, password)
	if err != nil {
		return renderError(err.(*fiber.Error).Message)
	}

	token, err := GenerateToken(user)
	if err != nil {
		return renderError("Не удалось создать сессию")
	}

	setAuthCookie(c, token)
	return c.Redirect("/tasks")
}

func LoginPage(c *fiber.Ctx) error {
	return c.Render("login", pageData(c, nil))
}

func LoginSubmit(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := authenticate(username, password)
	if err != nil {
		return c.Render("login", pageData(c, fiber.Map{"Error": "Неверный логин или пароль"}))
	}

	token, err := GenerateToken(user)
	if err != nil {
		return c.Render("login", pageData(c, fiber.Map{"Error": "Не удалось создать сессию"}))
	}

	setAuthCookie(c, token)
	return c.Redirect("/tasks")
}

func LogoutPage(c *fiber.Ctx) error {
	c.ClearCookie(middleware.TokenCookie)
	return c.Redirect("/")
}

// taskView is the display projection the task list template renders.
type taskView struct {
	ID            uint
	Title         string
	Description   string
	StatusLabel   string
	PriorityLabel string
	Category      string
	DueDate       string
	Overdue       bool
	Comments      []models.CommentResponse
}

func newTaskView(t *models.Task, now time.Time) taskView {
	view := taskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		StatusLabel:   t.Status.Label(),
		PriorityLabel: models.PriorityLabels[t.Priority],
		DueDate:       t.DueDate.Format("02.01.2006 15:04"),
		Overdue:       t.IsOverdue(now),
	}
	if t.Category != nil {
		view.Category = t.Category.Title
	}
	return view
}

func TaskListPage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	tasks, err := services.TasksForUser(userID, services.TaskListParams{Ordering: "-due_date"})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch tasks")
	}

	now := time.Now()
	views := make([]taskView, len(tasks))
	for i := range tasks {
		views[i] = newTaskView(&tasks[i], now)
		if comments, err := services.CommentsForTask(userID, tasks[i].ID); err == nil {
			views[i].Comments = commentResponses(comments)
		}
	}

	return c.Render("task_list", pageData(c, fiber.Map{"Tasks": views}))
}

func taskFormData(c *fiber.Ctx, extra fiber.Map) fiber.Map {
	categories, _ := services.ListCategories()
	data := fiber.Map{
		"Categories":     categories,
		"DueDateRaw":     "",
		"Statuses":       []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted},
		"StatusLabels":   models.StatusLabels,
		"Priorities":     []int{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical},
		"PriorityLabels": models.PriorityLabels,
	}
	for k, v := range extra {
		data[k] = v
	}
	return pageData(c, data)
}

func parseTaskForm(c *fiber.Ctx) models.TaskInput {
	input := models.TaskInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Status:      models.TaskStatus(c.FormValue("status")),
	}
	if priority, err := strconv.Atoi(c.FormValue("priority")); err == nil {
		input.Priority = priority
	}
	if due, err := time.ParseInLocation(formDueDateLayout, c.FormValue("due_date"), time.Local); err == nil {
		input.DueDate = due
	}
	if raw := c.FormValue("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			categoryID := uint(id)
			input.CategoryID = &categoryID
		}
	}
	return input
}

func TaskAddPage(c *fiber.Ctx) error {
	return c.Render("task_form", taskFormData(c, nil))
}

func TaskAddSubmit(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	input := parseTaskForm(c)

	if _, err := services.CreateTask(userID, input, time.Now(), false); err != nil {
		return c.Render("task_form", taskFormData(c, fiber.Map{
			"Error":      err.Error(),
			"Form":       input,
			"DueDateRaw": c.FormValue("due_date"),
		}))
	}

	return c.Redirect("/tasks")
}

func TaskEditPage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		return c.Redirect("/tasks")
	}

	task, err := services.GetTask(userID, taskID)
	if err != nil {
		return c.Redirect("/tasks")
	}

	form := models.TaskInput{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CategoryID:  task.CategoryID,
	}

	return c.Render("task_form", taskFormData(c, fiber.Map{
		"Edit":       true,
		"TaskID":     task.ID,
		"Form":       form,
		"DueDateRaw": task.DueDate.Format(formDueDateLayout),
	}))
}

func TaskEditSubmit(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		return c.Redirect("/tasks")
	}

	input := parseTaskForm(c)
	if _, err := services.UpdateTask(userID, taskID, input, time.Now(), false); err != nil {
		return c.Render("task_form", taskFormData(c, fiber.Map{
			"Edit":       true,
			"TaskID":     taskID,
			"Error":      err.Error(),
			"Form":       input,
			"DueDateRaw": c.FormValue("due_date"),
		}))
	}

	return c.Redirect("/tasks")
}

func TaskDeletePage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		return c.Redirect("/tasks")
	}

	task, err := services.GetTask(userID, taskID)
	if err != nil {
		return c.Redirect("/tasks")
	}

	return c.Render("task_delete", pageData(c, fiber.Map{"Task": newTaskView(task, time.Now())}))
}

func TaskDeleteSubmit(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		return c.Redirect("/tasks")
	}

	if err := services.DeleteTask(userID, taskID); err != nil {
		log.Warnf("delete task %d: %v", taskID, err)
	}
	return c.Redirect("/tasks")
}

// CommentAddSubmit handles the inline comment form on the task list. Unlike
// the API path it accepts any non-empty trimmed text.
func CommentAddSubmit(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		return c.Redirect("/tasks")
	}

	input := models.CommentInput{TaskID: taskID, Text: c.FormValue("text")}
	if _, err := services.CreateComment(userID, input, false); err != nil {
		log.Warnf("add comment to task %d: %v", taskID, err)
	}

	return c.Redirect("/tasks")
}
