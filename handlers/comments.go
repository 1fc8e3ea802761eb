package handlers

import (
	"github.com/gofiber/fiber/v2"

	"zadachnik/middleware"
	"zadachnik/models"
	"zadachnik/services"
)

func commentResponses(comments []models.Comment) []models.CommentResponse {
	responses := make([]models.CommentResponse, len(comments))
	for i := range comments {
		responses[i] = comments[i].ToResponse()
	}
	return responses
}

// ListComments returns every comment on the requester's tasks, newest first.
func ListComments(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	comments, err := services.CommentsForUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch comments",
		})
	}

	return c.JSON(commentResponses(comments))
}

// ListTaskComments returns the comments of one owned task.
func ListTaskComments(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseTaskID(c)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	comments, err := services.CommentsForTask(userID, taskID)
	if err != nil {
		return serviceError(c, err, taskNotFoundMsg, "")
	}

	return c.JSON(commentResponses(comments))
}

// CreateComment adds a comment to an owned task (API path, strict
// validation).
func CreateComment(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var input models.CommentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	comment, err := services.CreateComment(userID, input, true)
	if err != nil {
		return serviceError(c, err, taskNotFoundMsg, "")
	}

	return c.Status(fiber.StatusCreated).JSON(comment.ToResponse())
}
