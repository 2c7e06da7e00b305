// ABOUTME: Tests for task persistence
// ABOUTME: Covers CRUD, nullable fields, status transitions, and per-child listing

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestTask(id, parentID, childID string) *Task {
	now := time.Now().UTC().Truncate(time.Second)
	return &Task{
		ID:               id,
		ParentID:         parentID,
		ChildID:          childID,
		Title:            "Task " + id,
		Frequency:        TaskFrequencyDaily,
		Difficulty:       "easy",
		CoinValue:        10,
		RequiresApproval: true,
		Status:           TaskStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestCreateAndGetTask(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	task := newTestTask("task-1", "parent-1", "child-1")
	task.CategoryID = "cat-1"
	task.Description = "make the bed"
	task.DueTime = &due

	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := store.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Task task-1" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.CategoryID != "cat-1" {
		t.Errorf("CategoryID = %q, want cat-1", got.CategoryID)
	}
	if got.DueTime == nil || !got.DueTime.Equal(due) {
		t.Errorf("DueTime = %v, want %v", got.DueTime, due)
	}
	if got.CoinValue != 10 {
		t.Errorf("CoinValue = %d, want 10", got.CoinValue)
	}
	if !got.RequiresApproval {
		t.Error("RequiresApproval should be true")
	}
}

func TestCreateTask_NullableFields(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	task := newTestTask("task-1", "parent-1", "child-1")
	// No category, no due time

	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := store.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.CategoryID != "" {
		t.Errorf("CategoryID = %q, want empty", got.CategoryID)
	}
	if got.DueTime != nil {
		t.Errorf("DueTime = %v, want nil", got.DueTime)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.GetTask(context.Background(), "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTasks(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateTask(ctx, newTestTask("task-1", "parent-1", "child-1")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := store.CreateTask(ctx, newTestTask("task-2", "parent-1", "child-2")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := store.CreateTask(ctx, newTestTask("task-3", "parent-2", "child-3")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	byParent, err := store.ListTasksByParent(ctx, "parent-1")
	if err != nil {
		t.Fatalf("ListTasksByParent failed: %v", err)
	}
	if len(byParent) != 2 {
		t.Errorf("expected 2 tasks for parent-1, got %d", len(byParent))
	}

	byChild, err := store.ListTasksByChild(ctx, "child-2")
	if err != nil {
		t.Fatalf("ListTasksByChild failed: %v", err)
	}
	if len(byChild) != 1 || byChild[0].ID != "task-2" {
		t.Errorf("expected only task-2 for child-2, got %d tasks", len(byChild))
	}
}

func TestUpdateTask_StatusTransition(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	task := newTestTask("task-1", "parent-1", "child-1")
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	task.Status = TaskStatusSubmitted
	if err := store.UpdateTask(ctx, task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got, err := store.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != TaskStatusSubmitted {
		t.Errorf("Status = %q, want %q", got.Status, TaskStatusSubmitted)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	task := newTestTask("nonexistent", "parent-1", "child-1")
	if err := store.UpdateTask(context.Background(), task); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateTask(ctx, newTestTask("task-1", "parent-1", "child-1")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := store.DeleteTask(ctx, "task-1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := store.GetTask(ctx, "task-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteTask(ctx, "task-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestCategoryCRUD(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	category := &Category{
		ID:        "cat-1",
		ParentID:  "parent-1",
		Name:      "Homework",
		Icon:      "book",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	got, err := store.GetCategory(ctx, "cat-1")
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if got.Name != "Homework" {
		t.Errorf("Name = %q, want Homework", got.Name)
	}

	list, err := store.ListCategories(ctx, "parent-1")
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 category, got %d", len(list))
	}

	if err := store.DeleteCategory(ctx, "cat-1"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if _, err := store.GetCategory(ctx, "cat-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
