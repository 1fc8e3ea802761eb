package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// StatusLabels maps a stored status code to its display name.
var StatusLabels = map[TaskStatus]string{
	StatusPending:    "В ожидании",
	StatusInProgress: "В процессе",
	StatusCompleted:  "Завершено",
}

const (
	PriorityLow      = 1
	PriorityMedium   = 2
	PriorityHigh     = 3
	PriorityCritical = 4
)

// PriorityLabels maps a priority level to its display name.
var PriorityLabels = map[int]string{
	PriorityLow:      "Низкий",
	PriorityMedium:   "Средний",
	PriorityHigh:     "Высокий",
	PriorityCritical: "Критический",
}

func (s TaskStatus) Label() string {
	if label, ok := StatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsActive reports whether the task status counts as not finished.
func (s TaskStatus) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"not null;size:50" json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Priority     int        `gorm:"not null;default:2" json:"priority"`
	DueDate      time.Time  `gorm:"not null;index" json:"due_date"`
	CreationDate time.Time  `json:"creation_date"`
	UpdateDate   time.Time  `json:"update_date"`
	CategoryID   *uint      `gorm:"index" json:"category_id"`
	Category     *Category  `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `json:"-"`
}

// TaskInput is used for creating/updating tasks
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	DueDate     time.Time  `json:"due_date"`
	CategoryID  *uint      `json:"category_id"`
}

// ApplyDefaults fills the fields the caller may omit.
func (in *TaskInput) ApplyDefaults() {
	if in.Status == "" {
		in.Status = StatusPending
	}
	if in.Priority == 0 {
		in.Priority = PriorityMedium
	}
}

// TaskResponse is the read-only projection returned by list/detail endpoints.
type TaskResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"status"`
	StatusLabel   string     `json:"status_label"`
	Priority      int        `json:"priority"`
	PriorityLabel string     `json:"priority_label"`
	DueDate       time.Time  `json:"due_date"`
	CreationDate  time.Time  `json:"creation_date"`
	UpdateDate    time.Time  `json:"update_date"`
	Category      *Category  `json:"category,omitempty"`
	Owner         string     `json:"owner,omitempty"`
	CommentsCount int64      `json:"comments_count"`
}

func (t *Task) ToResponse() TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		StatusLabel:   t.Status.Label(),
		Priority:      t.Priority,
		PriorityLabel: PriorityLabels[t.Priority],
		DueDate:       t.DueDate,
		CreationDate:  t.CreationDate,
		UpdateDate:    t.UpdateDate,
		Category:      t.Category,
		Owner:         t.User.Username,
	}
}

// IsOverdue reports whether the task is past due and still active.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusCompleted && !t.DueDate.IsZero() && now.After(t.DueDate)
}

// BeforeCreate pins the creation date exactly once.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.CreationDate.IsZero() {
		t.CreationDate = time.Now()
	}
	return nil
}

// BeforeSave refreshes the update date on every persistence.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.UpdateDate = time.Now()
	return nil
}

func (t *Task) AfterCreate(tx *gorm.DB) error {
	return tx.Create(newTaskSnapshot(t, HistoryCreate)).Error
}

func (t *Task) AfterUpdate(tx *gorm.DB) error {
	return tx.Create(newTaskSnapshot(t, HistoryUpdate)).Error
}

func (t *Task) AfterDelete(tx *gorm.DB) error {
	return tx.Create(newTaskSnapshot(t, HistoryDelete)).Error
}
