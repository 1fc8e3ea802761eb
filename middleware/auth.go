package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"zadachnik/config"
)

// TokenCookie is the cookie the web UI stores its session token in.
const TokenCookie = "token"

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// extractToken looks for a Bearer token first (API clients), then falls back
// to the session cookie (server-rendered pages).
func extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
		}
		return parts[1], nil
	}

	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie, nil
	}

	return "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
}

// parseClaims extracts and validates JWT claims from the request
func parseClaims(c *fiber.Ctx) (*Claims, error) {
	cfg := config.GetConfig()

	tokenString, err := extractToken(c)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	return claims, nil
}

func storeClaims(c *fiber.Ctx, claims *Claims) {
	c.Locals("userID", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("role", claims.Role)
}

// AuthRequired validates the token and responds with JSON on failure (API)
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseClaims(c)
		if err != nil {
			e := err.(*fiber.Error)
			return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// LoginRequired validates the token and redirects to the login page on
// failure (server-rendered pages)
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseClaims(c)
		if err != nil {
			return c.Redirect("/auth/login")
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth stores claims when a valid token is present but lets the
// request through either way (public pages that greet a logged-in user)
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := parseClaims(c); err == nil {
			storeClaims(c, claims)
		}
		return c.Next()
	}
}

// AdminRequired middleware checks if user has admin role
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetRole(c) != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uint {
	if userID, ok := c.Locals("userID").(uint); ok {
		return userID
	}
	return 0
}

func GetUsername(c *fiber.Ctx) string {
	if username, ok := c.Locals("username").(string); ok {
		return username
	}
	return ""
}

func GetRole(c *fiber.Ctx) string {
	if role, ok := c.Locals("role").(string); ok {
		return role
	}
	return ""
}

func IsAdmin(c *fiber.Ctx) bool {
	return GetRole(c) == "admin"
}
