package models

import (
	"time"

	"gorm.io/gorm"
)

const CommentMaxLength = 1000

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index:idx_comments_task_created" json:"task_id"`
	Task      Task      `json:"-"`
	UserID    uint      `gorm:"not null;index:idx_comments_user_created" json:"user_id"`
	User      User      `json:"-"`
	Text      string    `gorm:"not null;size:1000" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_comments_task_created;index:idx_comments_user_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentInput is used for creating comments through the API
type CommentInput struct {
	TaskID uint   `json:"task_id"`
	Text   string `json:"text"`
}

// CommentResponse is the read-only projection of a comment.
type CommentResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (cm *Comment) ToResponse() CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		TaskID:    cm.TaskID,
		Author:    cm.User.Username,
		Text:      cm.Text,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
}

func (cm *Comment) AfterCreate(tx *gorm.DB) error {
	return tx.Create(newCommentSnapshot(cm, HistoryCreate)).Error
}

func (cm *Comment) AfterUpdate(tx *gorm.DB) error {
	return tx.Create(newCommentSnapshot(cm, HistoryUpdate)).Error
}

func (cm *Comment) AfterDelete(tx *gorm.DB) error {
	return tx.Create(newCommentSnapshot(cm, HistoryDelete)).Error
}
