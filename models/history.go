package models

import (
	"time"
)

// HistoryType marks what kind of mutation produced a snapshot.
type HistoryType string

const (
	HistoryCreate HistoryType = "create"
	HistoryUpdate HistoryType = "update"
	HistoryDelete HistoryType = "delete"
)

// History tables are append-only: every create/update/delete of a live row
// writes one full field snapshot here, inside the same transaction as the
// primary mutation. Rows are never updated or deleted afterwards.

type TaskHistory struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TaskID       uint        `gorm:"index" json:"task_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Status       TaskStatus  `json:"status"`
	Priority     int         `json:"priority"`
	DueDate      time.Time   `json:"due_date"`
	CreationDate time.Time   `json:"creation_date"`
	UpdateDate   time.Time   `json:"update_date"`
	CategoryID   *uint       `json:"category_id"`
	UserID       uint        `json:"user_id"`
	ChangeType   HistoryType `gorm:"index" json:"change_type"`
	ChangedAt    time.Time   `gorm:"index;autoCreateTime" json:"changed_at"`
}

type CategoryHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	CategoryID uint        `gorm:"index" json:"category_id"`
	Title      string      `json:"title"`
	Color      string      `json:"color"`
	ChangeType HistoryType `gorm:"index" json:"change_type"`
	ChangedAt  time.Time   `gorm:"index;autoCreateTime" json:"changed_at"`
}

type CommentHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	CommentID  uint        `gorm:"index" json:"comment_id"`
	TaskID     uint        `json:"task_id"`
	UserID     uint        `json:"user_id"`
	Text       string      `json:"text"`
	ChangeType HistoryType `gorm:"index" json:"change_type"`
	ChangedAt  time.Time   `gorm:"index;autoCreateTime" json:"changed_at"`
}

func newTaskSnapshot(t *Task, change HistoryType) *TaskHistory {
	return &TaskHistory{
		TaskID:       t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		CreationDate: t.CreationDate,
		UpdateDate:   t.UpdateDate,
		CategoryID:   t.CategoryID,
		UserID:       t.UserID,
		ChangeType:   change,
	}
}

func newCategorySnapshot(cat *Category, change HistoryType) *CategoryHistory {
	return &CategoryHistory{
		CategoryID: cat.ID,
		Title:      cat.Title,
		Color:      cat.Color,
		ChangeType: change,
	}
}

func newCommentSnapshot(cm *Comment, change HistoryType) *CommentHistory {
	return &CommentHistory{
		CommentID:  cm.ID,
		TaskID:     cm.TaskID,
		UserID:     cm.UserID,
		Text:       cm.Text,
		ChangeType: change,
	}
}
