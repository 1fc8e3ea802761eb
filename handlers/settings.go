package handlers

import (
	"github.com/gofiber/fiber/v2"

	"zadachnik/config"
)

type AppSettings struct {
	SessionDurationHours int    `json:"session_duration_hours"`
	SiteHeader           string `json:"site_header"`
	SiteTitle            string `json:"site_title"`
	IndexTitle           string `json:"index_title"`
}

func currentSettings() AppSettings {
	cfg := config.GetConfig()
	return AppSettings{
		SessionDurationHours: cfg.SessionDurationHours,
		SiteHeader:           cfg.SiteHeader,
		SiteTitle:            cfg.SiteTitle,
		IndexTitle:           cfg.IndexTitle,
	}
}

// GetSettings returns non-sensitive application settings (admin only)
func GetSettings(c *fiber.Ctx) error {
	return c.JSON(currentSettings())
}

// UpdateSettings updates application settings, including the site-wide
// display strings (admin only)
func UpdateSettings(c *fiber.Ctx) error {
	var input AppSettings
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.SessionDurationHours != 0 && (input.SessionDurationHours < 1 || input.SessionDurationHours > 720) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session duration must be between 1 and 720 hours",
		})
	}

	cfg := config.GetConfig()
	if input.SessionDurationHours != 0 {
		cfg.SessionDurationHours = input.SessionDurationHours
	}
	if input.SiteHeader != "" {
		cfg.SiteHeader = input.SiteHeader
	}
	if input.SiteTitle != "" {
		cfg.SiteTitle = input.SiteTitle
	}
	if input.IndexTitle != "" {
		cfg.IndexTitle = input.IndexTitle
	}

	if err := cfg.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save settings",
		})
	}

	return c.JSON(currentSettings())
}
