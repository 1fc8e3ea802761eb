package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError reports which field failed and why. The mutation it guards
// is never partially applied.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

const (
	minTitleLength   = 3
	minCommentLength = 5
)

func validateTitle(field, value, message string) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < minTitleLength {
		return &ValidationError{Field: field, Message: message}
	}
	return nil
}

// Validate applies the API-path rules, including the due-date-in-the-past
// check. The web form path uses ValidateForm instead, which skips it.
func (in *TaskInput) Validate(now time.Time) error {
	if err := in.ValidateForm(); err != nil {
		return err
	}
	if in.DueDate.Before(now) {
		return &ValidationError{Field: "due_date", Message: "Срок выполнения не может быть в прошлом"}
	}
	return nil
}

// ValidateForm applies the rules shared by the API and web form paths.
func (in *TaskInput) ValidateForm() error {
	if err := validateTitle("title", in.Title, "Название задачи должно содержать минимум 3 символа"); err != nil {
		return err
	}
	if _, ok := StatusLabels[in.Status]; !ok {
		return &ValidationError{Field: "status", Message: "Недопустимый статус задачи"}
	}
	if in.Priority < PriorityLow || in.Priority > PriorityCritical {
		return &ValidationError{Field: "priority", Message: "Приоритет должен быть в диапазоне от 1 до 4"}
	}
	if in.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Message: "Укажите срок выполнения"}
	}
	return nil
}

// Validate applies the API-path comment rules (the web form path only
// requires non-empty trimmed text, checked at the handler).
func (in *CommentInput) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(in.Text)) < minCommentLength {
		return &ValidationError{Field: "text", Message: "Комментарий должен содержать минимум 5 символов"}
	}
	if utf8.RuneCountInString(in.Text) > CommentMaxLength {
		return &ValidationError{Field: "text", Message: "Максимальная длина 1000 символов"}
	}
	if in.TaskID == 0 {
		return &ValidationError{Field: "task_id", Message: "Укажите задачу"}
	}
	return nil
}

func (in *CategoryInput) Validate() error {
	if err := validateTitle("title", in.Title, "Название категории должно содержать минимум 3 символа"); err != nil {
		return err
	}
	if in.Color != "" && !IsCategoryColor(in.Color) {
		return &ValidationError{Field: "color", Message: "Недопустимый цвет категории"}
	}
	return nil
}
