package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"zadachnik/models"
	"zadachnik/services"
)

// serviceError translates a service-layer error into the API response.
// notFoundMsg keeps ownership violations indistinguishable from absence.
func serviceError(c *fiber.Ctx, err error, notFoundMsg, conflictMsg string) error {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": vErr.Message,
			"field": vErr.Field,
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": notFoundMsg,
		})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": conflictMsg,
		})
	case errors.Is(err, services.ErrAuthRequired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Требуется аутентификация",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Внутренняя ошибка сервера",
		})
	}
}
