package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"zadachnik/database"
	"zadachnik/models"
)

// CommentsForUser returns every comment on tasks the requester owns, newest
// first.
func CommentsForUser(userID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := database.DB.Preload("User").
		Select("comments.*").
		Joins("JOIN tasks ON tasks.id = comments.task_id").
		Where("tasks.user_id = ?", userID).
		Order("comments.created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentsForTask returns the comments of one owned task, newest first.
func CommentsForTask(userID, taskID uint) ([]models.Comment, error) {
	if _, err := GetTask(userID, taskID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := database.DB.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentsCountForTask counts the comments of a task (projection field).
func CommentsCountForTask(taskID uint) (int64, error) {
	var count int64
	err := database.DB.Model(&models.Comment{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, err
}

// CreateComment adds a comment to an owned task and touches the task's
// update date. Both writes happen in one transaction so a reader never sees
// one without the other. strict applies the API minimum length; the web form
// path only rejects empty trimmed text.
func CreateComment(userID uint, in models.CommentInput, strict bool) (*models.Comment, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}

	if strict {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	} else if strings.TrimSpace(in.Text) == "" {
		return nil, &models.ValidationError{Field: "text", Message: "Комментарий не может быть пустым"}
	}

	var comment models.Comment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("id = ? AND user_id = ?", in.TaskID, userID).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		comment = models.Comment{
			TaskID: task.ID,
			UserID: userID,
			Text:   in.Text,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		// Saving through the model refreshes update_date and records the
		// task history snapshot alongside the comment insert.
		task.UpdateDate = time.Now()
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
