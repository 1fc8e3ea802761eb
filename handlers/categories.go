package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"zadachnik/models"
	"zadachnik/services"
)

const categoryNotFoundMsg = "Категория не найдена"

func parseCategoryID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid category ID")
	}
	return uint(id), nil
}

// ListCategories returns all categories (shared reference data, read-only
// for regular users).
func ListCategories(c *fiber.Ctx) error {
	categories, err := services.ListCategories()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch categories",
		})
	}
	return c.JSON(categories)
}

func GetCategory(c *fiber.Ctx) error {
	categoryID, err := parseCategoryID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	category, err := services.GetCategory(categoryID)
	if err != nil {
		return serviceError(c, err, categoryNotFoundMsg, "")
	}
	return c.JSON(category)
}

// ListCategoryColors returns the fixed color palette with display names.
func ListCategoryColors(c *fiber.Ctx) error {
	return c.JSON(models.CategoryColors)
}

// CreateCategory creates a category (admin only).
func CreateCategory(c *fiber.Ctx) error {
	var input models.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	category, err := services.CreateCategory(input)
	if err != nil {
		return serviceError(c, err, categoryNotFoundMsg, "Категория с таким названием уже существует")
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory updates a category (admin only).
func UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := parseCategoryID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	var input models.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	category, err := services.UpdateCategory(categoryID, input)
	if err != nil {
		return serviceError(c, err, categoryNotFoundMsg, "Категория с таким названием уже существует")
	}

	return c.JSON(category)
}

// DeleteCategory deletes a category; referencing tasks are detached, not
// removed (admin only).
func DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := parseCategoryID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	if err := services.DeleteCategory(categoryID); err != nil {
		return serviceError(c, err, categoryNotFoundMsg, "")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
