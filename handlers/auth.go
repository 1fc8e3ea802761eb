package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"zadachnik/config"
	"zadachnik/database"
	"zadachnik/middleware"
	"zadachnik/models"
	"zadachnik/services"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// Register creates a new account and returns a token. The very first
// account gets the admin role and owns the back-office.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := createAccount(req.Username, req.Password)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	token, err := GenerateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}

// createAccount validates credentials and persists a user; shared by the API
// registration and the web register form.
func createAccount(username, password string) (*models.User, error) {
	if len(username) < 3 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Имя пользователя должно содержать минимум 3 символа")
	}
	if len(password) < 6 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Пароль должен содержать минимум 6 символов")
	}

	var existing models.User
	if result := database.DB.Where("username = ?", username).First(&existing); result.Error == nil {
		return nil, fiber.NewError(fiber.StatusConflict, "Пользователь с таким именем уже существует")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
	}

	role := models.RoleUser
	if !database.IsSetupComplete() {
		role = models.RoleAdmin
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if result := database.DB.Create(&user); result.Error != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create user")
	}
	return &user, nil
}

// Login authenticates a user and returns a JWT token
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := authenticate(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Неверный логин или пароль",
		})
	}

	token, err := GenerateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}

func authenticate(username, password string) (*models.User, error) {
	var user models.User
	if result := database.DB.Where("username = ?", username).First(&user); result.Error != nil {
		return nil, result.Error
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears the session cookie. Tokens are stateless, so API clients
// simply discard theirs.
func Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.TokenCookie)
	return c.JSON(fiber.Map{"detail": "Вы успешно вышли из системы"})
}

// GetCurrentUser returns the currently authenticated user
func GetCurrentUser(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var user models.User
	if result := database.DB.First(&user, userID); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user.ToResponse())
}

// ListUsers returns all users (admin only)
func ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if result := database.DB.Find(&users); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	responses := make([]models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}

	return c.JSON(responses)
}

// CreateUser creates a new user (admin only)
func CreateUser(c *fiber.Ctx) error {
	var input models.UserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := createAccount(input.Username, input.Password)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	if input.Role == models.RoleAdmin {
		user.Role = models.RoleAdmin
		if result := database.DB.Save(user); result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update user role",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// UpdateUser updates a user (admin only)
func UpdateUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var user models.User
	if result := database.DB.First(&user, userID); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var input models.UserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.Username != "" && input.Username != user.Username {
		if len(input.Username) < 3 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Имя пользователя должно содержать минимум 3 символа",
			})
		}
		var existing models.User
		if result := database.DB.Where("username = ? AND id != ?", input.Username, userID).First(&existing); result.Error == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Пользователь с таким именем уже существует",
			})
		}
		user.Username = input.Username
	}

	if input.Password != "" {
		if len(input.Password) < 6 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Пароль должен содержать минимум 6 символов",
			})
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to hash password",
			})
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.Role == models.RoleAdmin || input.Role == models.RoleUser {
		user.Role = input.Role
	}

	if result := database.DB.Save(&user); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}

	return c.JSON(user.ToResponse())
}

// DeleteUser deletes a user and their tasks (admin only)
func DeleteUser(c *fiber.Ctx) error {
	currentUserID := middleware.GetUserID(c)
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	// Prevent self-deletion
	if uint(userID) == currentUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot delete your own account",
		})
	}

	var user models.User
	if result := database.DB.First(&user, userID); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	// Drop the user's tasks first, comments cascading with each task.
	var tasks []models.Task
	database.DB.Where("user_id = ?", userID).Find(&tasks)
	for _, t := range tasks {
		if err := services.DeleteTask(uint(userID), t.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to delete user tasks",
			})
		}
	}

	if result := database.DB.Delete(&user); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateToken issues an HS256 session token for the user.
func GenerateToken(user *models.User) (string, error) {
	cfg := config.GetConfig()

	claims := middleware.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.SessionDurationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}
