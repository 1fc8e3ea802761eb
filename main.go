package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	log "github.com/sirupsen/logrus"

	"zadachnik/config"
	"zadachnik/database"
	"zadachnik/handlers"
	"zadachnik/middleware"
	"zadachnik/services"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "overdue":
			runOverdueReport()
			return
		case "stats":
			runStatsReport()
			return
		}
	}

	serve()
}

func serve() {
	cfg := config.GetConfig()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	engine := html.New("./views", ".html")
	engine.AddFunc("deref", func(v *uint) uint {
		if v == nil {
			return 0
		}
		return *v
	})

	app := fiber.New(fiber.Config{
		AppName:      "Zadachnik",
		Views:        engine,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173,http://localhost:3000,http://localhost:8080",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Rate limiter for auth endpoints (5 requests per minute per IP)
	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts. Please try again later.",
			})
		},
	})

	// Server-rendered pages
	app.Get("/", middleware.OptionalAuth(), handlers.HomePage)
	app.Get("/auth/register", handlers.RegisterPage)
	app.Post("/auth/register", authLimiter, handlers.RegisterSubmit)
	app.Get("/auth/login", handlers.LoginPage)
	app.Post("/auth/login", authLimiter, handlers.LoginSubmit)
	app.Get("/auth/logout", handlers.LogoutPage)

	pages := app.Group("/tasks", middleware.LoginRequired())
	pages.Get("/", handlers.TaskListPage)
	pages.Get("/add", handlers.TaskAddPage)
	pages.Post("/add", handlers.TaskAddSubmit)
	pages.Get("/edit/:id", handlers.TaskEditPage)
	pages.Post("/edit/:id", handlers.TaskEditSubmit)
	pages.Get("/delete/:id", handlers.TaskDeletePage)
	pages.Post("/delete/:id", handlers.TaskDeleteSubmit)
	pages.Post("/:id/comment", handlers.CommentAddSubmit)

	// API routes
	api := app.Group("/api")

	api.Post("/auth/register", authLimiter, handlers.Register)
	api.Post("/auth/login", authLimiter, handlers.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired())
	protected.Post("/auth/logout", handlers.Logout)
	protected.Get("/user", handlers.GetCurrentUser)

	// Task routes (named queries before the :id wildcard)
	tasks := protected.Group("/tasks")
	tasks.Get("/", handlers.ListTasks)
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/overdue", handlers.ListOverdueTasks)
	tasks.Get("/filtered", handlers.ListFilteredTasks)
	tasks.Get("/:id", handlers.GetTask)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)
	tasks.Post("/:id/complete", handlers.MarkTaskComplete)
	tasks.Get("/:id/comments", handlers.ListTaskComments)

	// Comment routes
	protected.Get("/comments", handlers.ListComments)
	protected.Post("/comments", handlers.CreateComment)

	// Category routes (read-only unless admin)
	categories := protected.Group("/categories")
	categories.Get("/", handlers.ListCategories)
	categories.Get("/colors", handlers.ListCategoryColors)
	categories.Get("/:id", handlers.GetCategory)
	categories.Post("/", middleware.AdminRequired(), handlers.CreateCategory)
	categories.Put("/:id", middleware.AdminRequired(), handlers.UpdateCategory)
	categories.Delete("/:id", middleware.AdminRequired(), handlers.DeleteCategory)

	// Admin-only routes
	admin := protected.Group("/admin", middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("/", handlers.ListUsers)
	users.Post("/", handlers.CreateUser)
	users.Put("/:id", handlers.UpdateUser)
	users.Delete("/:id", handlers.DeleteUser)

	admin.Get("/history/:entity", handlers.ListHistory)
	admin.Get("/history-changes", handlers.GetHistoryChangeTypes)
	admin.Get("/export/tasks", handlers.ExportTasks)
	admin.Get("/settings", handlers.GetSettings)
	admin.Put("/settings", handlers.UpdateSettings)
	admin.Get("/stats", handlers.GetTaskStats)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Errorf("Error shutting down: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Infof("Starting Zadachnik on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runOverdueReport prints every overdue active task across all users.
func runOverdueReport() {
	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	tasks, err := services.AllOverdueTasks(time.Now())
	if err != nil {
		log.Fatalf("Failed to fetch overdue tasks: %v", err)
	}

	if len(tasks) == 0 {
		fmt.Println("Просроченных задач нет")
		return
	}

	fmt.Println("Просроченные задачи:")
	for _, task := range tasks {
		fmt.Printf("- %s | пользователь: %s | срок: %s\n",
			task.Title, task.User.Username, task.DueDate.Format("02-01-2006 15:04"))
	}
}

// runStatsReport prints task counts by status.
func runStatsReport() {
	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	stats, err := services.StatusCounts()
	if err != nil {
		log.Fatalf("Failed to compute stats: %v", err)
	}

	fmt.Println("Статистика задач:")
	fmt.Printf("Всего задач: %d\n", stats.Total)
	fmt.Printf("В ожидании: %d\n", stats.Pending)
	fmt.Printf("В процессе: %d\n", stats.InProgress)
	fmt.Printf("Завершено: %d\n", stats.Completed)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
