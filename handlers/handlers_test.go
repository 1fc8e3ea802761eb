package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zadachnik/database"
	"zadachnik/middleware"
	"zadachnik/models"
)

func TestMain(m *testing.M) {
	// Keep the config singleton away from the real home directory.
	os.Setenv("ZADACHNIK_CONFIG_DIR", filepath.Join(os.TempDir(), "zadachnik-handlers-test"))
	os.Exit(m.Run())
}

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
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db
}

// setupApp wires the API routes the way main does, without the web pages.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	setupTestDB(t)

	app := fiber.New()

	api := app.Group("/api")
	api.Post("/auth/register", Register)
	api.Post("/auth/login", Login)

	protected := api.Group("", middleware.AuthRequired())
	protected.Get("/user", GetCurrentUser)

	tasks := protected.Group("/tasks")
	tasks.Get("/", ListTasks)
	tasks.Post("/", CreateTask)
	tasks.Get("/overdue", ListOverdueTasks)
	tasks.Get("/filtered", ListFilteredTasks)
	tasks.Get("/:id", GetTask)
	tasks.Put("/:id", UpdateTask)
	tasks.Delete("/:id", DeleteTask)
	tasks.Post("/:id/complete", MarkTaskComplete)
	tasks.Get("/:id/comments", ListTaskComments)

	protected.Post("/comments", CreateComment)

	admin := protected.Group("/admin", middleware.AdminRequired())
	admin.Get("/export/tasks", ExportTasks)
	admin.Get("/history/:entity", ListHistory)
	admin.Get("/stats", GetTaskStats)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerUser(t *testing.T, app *fiber.App, username string) AuthResponse {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: username,
		Password: "secret123",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	var auth AuthResponse
	decodeBody(t, resp, &auth)
	return auth
}

func createTaskViaAPI(t *testing.T, app *fiber.App, token, title string, priority int) models.TaskResponse {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/tasks/", token, models.TaskInput{
		Title:    title,
		Priority: priority,
		DueDate:  time.Now().Add(48 * time.Hour),
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create task: status %d", resp.StatusCode)
	}
	var task models.TaskResponse
	decodeBody(t, resp, &task)
	return task
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	auth := registerUser(t, app, "alice")
	if auth.Token == "" {
		t.Fatal("register returned empty token")
	}
	// First account owns the back-office.
	if auth.User.Role != models.RoleAdmin {
		t.Errorf("expected first user to be admin, got %s", auth.User.Role)
	}

	second := registerUser(t, app, "bob")
	if second.User.Role != models.RoleUser {
		t.Errorf("expected second user to be regular, got %s", second.User.Role)
	}

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", RegisterRequest{Username: "alice", Password: "secret123"})
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("duplicate username: expected 409, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", LoginRequest{Username: "alice", Password: "wrong"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("bad password: expected 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", LoginRequest{Username: "alice", Password: "secret123"})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("login: expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/tasks/", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestTaskCRUDFlow(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "alice")

	task := createTaskViaAPI(t, app, auth.Token, "Купить продукты", 3)
	if task.StatusLabel != "В ожидании" {
		t.Errorf("expected localized status label, got %q", task.StatusLabel)
	}

	resp := doJSON(t, app, fiber.MethodGet, "/api/tasks/", auth.Token, nil)
	var list []models.TaskResponse
	decodeBody(t, resp, &list)
	if len(list) != 1 || list[0].ID != task.ID {
		t.Fatalf("expected one owned task, got %d", len(list))
	}

	resp = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), auth.Token, models.TaskInput{
		Title:    "Купить продукты и хлеб",
		Status:   models.StatusInProgress,
		Priority: 3,
		DueDate:  time.Now().Add(72 * time.Hour),
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), auth.Token, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), auth.Token, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", resp.StatusCode)
	}
}

func TestValidationErrorResponse(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/tasks/", auth.Token, models.TaskInput{
		Title:   "аб",
		DueDate: time.Now().Add(24 * time.Hour),
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	decodeBody(t, resp, &body)
	if body.Field != "title" || body.Error == "" {
		t.Errorf("expected field-level error, got %+v", body)
	}
}

func TestOwnershipReturnsNotFound(t *testing.T) {
	app := setupApp(t)
	alice := registerUser(t, app, "alice")
	bob := registerUser(t, app, "bob")

	task := createTaskViaAPI(t, app, alice.Token, "Задача Алисы", 2)

	paths := []struct {
		method, path string
		body         interface{}
	}{
		{fiber.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil},
		{fiber.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil},
		{fiber.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), nil},
		{fiber.MethodGet, fmt.Sprintf("/api/tasks/%d/comments", task.ID), nil},
	}
	for _, p := range paths {
		resp := doJSON(t, app, p.method, p.path, bob.Token, p.body)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("%s %s: expected 404 for non-owner, got %d", p.method, p.path, resp.StatusCode)
		}
	}
}

func TestMarkCompleteConflictResponse(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "alice")
	task := createTaskViaAPI(t, app, auth.Token, "Задача", 2)

	path := fmt.Sprintf("/api/tasks/%d/complete", task.ID)

	resp := doJSON(t, app, fiber.MethodPost, path, auth.Token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first complete: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodPost, path, auth.Token, nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("second complete: expected 409, got %d", resp.StatusCode)
	}
}

func TestCommentAPIValidation(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "alice")
	task := createTaskViaAPI(t, app, auth.Token, "Задача", 2)

	resp := doJSON(t, app, fiber.MethodPost, "/api/comments", auth.Token, models.CommentInput{TaskID: task.ID, Text: "ok"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("2-char comment: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodPost, "/api/comments", auth.Token, models.CommentInput{TaskID: task.ID, Text: "okay!"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("5-char comment: expected 201, got %d", resp.StatusCode)
	}
}

func TestWebSubmitsRedirectDespiteServiceError(t *testing.T) {
	setupTestDB(t)

	app := fiber.New()
	pages := app.Group("/tasks", middleware.LoginRequired())
	pages.Post("/delete/:id", TaskDeleteSubmit)
	pages.Post("/:id/comment", CommentAddSubmit)

	user := models.User{Username: "alice", PasswordHash: "x", Role: models.RoleUser}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := GenerateToken(&user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	paths := []struct {
		path, body string
	}{
		{"/tasks/delete/999999", ""},
		{"/tasks/999999/comment", "text=комментарий"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(fiber.MethodPost, p.path, strings.NewReader(p.body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})

		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("POST %s: %v", p.path, err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Errorf("POST %s: expected redirect, got %d", p.path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/tasks" {
			t.Errorf("POST %s: expected redirect to /tasks, got %q", p.path, loc)
		}
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	app := setupApp(t)
	admin := registerUser(t, app, "alice")
	regular := registerUser(t, app, "bob")

	resp := doJSON(t, app, fiber.MethodGet, "/api/admin/export/tasks", regular.Token, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("non-admin export: expected 403, got %d", resp.StatusCode)
	}

	createTaskViaAPI(t, app, admin.Token, "Критическая задача", 4)

	resp = doJSON(t, app, fiber.MethodGet, "/api/admin/export/tasks", admin.Token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin export: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected export content type: %q", ct)
	}

	resp = doJSON(t, app, fiber.MethodGet, "/api/admin/history/tasks", admin.Token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("history: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodGet, "/api/admin/stats", admin.Token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("stats: expected 200, got %d", resp.StatusCode)
	}
}
