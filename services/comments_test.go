package services

import (
	"errors"
	"testing"
	"time"

	"zadachnik/database"
	"zadachnik/models"
)

func TestCreateCommentAPILengthRule(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	task := createTestTask(t, user.ID, "Задача", models.StatusPending, 2, futureDue(), nil)

	_, err := CreateComment(user.ID, models.CommentInput{TaskID: task.ID, Text: "ok"}, true)
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "text" {
		t.Fatalf("expected text validation error for 2-char comment, got %v", err)
	}

	comment, err := CreateComment(user.ID, models.CommentInput{TaskID: task.ID, Text: "okay!"}, true)
	if err != nil {
		t.Fatalf("5-char comment rejected: %v", err)
	}
	if comment.ID == 0 || comment.CreatedAt.IsZero() {
		t.Errorf("comment not persisted properly: %+v", comment)
	}
}

func TestCreateCommentFormPathRule(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	task := createTestTask(t, user.ID, "Задача", models.StatusPending, 2, futureDue(), nil)

	// The form path only rejects empty trimmed text.
	if _, err := CreateComment(user.ID, models.CommentInput{TaskID: task.ID, Text: "   "}, false); err == nil {
		t.Error("expected blank comment to be rejected on the form path")
	}
	if _, err := CreateComment(user.ID, models.CommentInput{TaskID: task.ID, Text: "ok"}, false); err != nil {
		t.Errorf("form path rejected short comment: %v", err)
	}
}

func TestCreateCommentTouchesParentTask(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	task := createTestTask(t, user.ID, "Задача", models.StatusPending, 2, futureDue(), nil)

	var before models.Task
	database.DB.First(&before, task.ID)

	time.Sleep(10 * time.Millisecond)

	if _, err := CreateComment(user.ID, models.CommentInput{TaskID: task.ID, Text: "новый комментарий"}, true); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	var after models.Task
	database.DB.First(&after, task.ID)
	if !after.UpdateDate.After(before.UpdateDate) {
		t.Errorf("parent update date not touched: %v -> %v", before.UpdateDate, after.UpdateDate)
	}
	if !after.CreationDate.Equal(before.CreationDate) {
		t.Errorf("parent creation date changed: %v -> %v", before.CreationDate, after.CreationDate)
	}
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	task := createTestTask(t, user.ID, "Задача", models.StatusPending, 2, futureDue(), nil)

	if _, err := CreateComment(0, models.CommentInput{TaskID: task.ID, Text: "комментарий"}, true); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestCommentVisibilityScoping(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	task := createTestTask(t, alice.ID, "Задача Алисы", models.StatusPending, 2, futureDue(), nil)

	if _, err := CreateComment(bob.ID, models.CommentInput{TaskID: task.ID, Text: "чужой комментарий"}, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("create on foreign task: expected ErrNotFound, got %v", err)
	}

	if _, err := CommentsForTask(bob.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("list foreign task comments: expected ErrNotFound, got %v", err)
	}

	if _, err := CreateComment(alice.ID, models.CommentInput{TaskID: task.ID, Text: "свой комментарий"}, true); err != nil {
		t.Fatalf("owner comment: %v", err)
	}

	comments, err := CommentsForUser(bob.ID)
	if err != nil {
		t.Fatalf("comments for bob: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("bob sees %d foreign comments", len(comments))
	}
}

func TestCommentsForTaskNewestFirst(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	task := createTestTask(t, user.ID, "Задача", models.StatusPending, 2, futureDue(), nil)

	first, err := CreateComment(user.ID, models.CommentInput{TaskID: task.ID, Text: "первый комментарий"}, true)
	if err != nil {
		t.Fatalf("first comment: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := CreateComment(user.ID, models.CommentInput{TaskID: task.ID, Text: "второй комментарий"}, true)
	if err != nil {
		t.Fatalf("second comment: %v", err)
	}

	comments, err := CommentsForTask(user.ID, task.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 || comments[0].ID != second.ID || comments[1].ID != first.ID {
		t.Fatalf("expected newest first, got order %v, %v", comments[0].ID, comments[1].ID)
	}
}
