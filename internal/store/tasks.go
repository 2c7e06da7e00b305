// ABOUTME: Task (chore) persistence for SQLiteStore
// ABOUTME: CRUD plus listing by parent or by child

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const taskColumns = `id, parent_id, child_id, category_id, title, description, frequency,
	difficulty, coin_value, requires_approval, status, due_time, created_at, updated_at`

// CreateTask inserts a new task.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var dueTimeStr *string
	if task.DueTime != nil {
		v := task.DueTime.UTC().Format(time.RFC3339)
		dueTimeStr = &v
	}

	var categoryID *string
	if task.CategoryID != "" {
		categoryID = &task.CategoryID
	}

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.ParentID,
		task.ChildID,
		categoryID,
		task.Title,
		task.Description,
		task.Frequency,
		task.Difficulty,
		task.CoinValue,
		task.RequiresApproval,
		task.Status,
		dueTimeStr,
		task.CreatedAt.UTC().Format(time.RFC3339),
		task.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	s.logger.Debug("created task", "id", task.ID, "child_id", task.ChildID)
	return nil
}

// GetTask retrieves a task by ID.
// Returns ErrNotFound if no task exists.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying task: %w", err)
		}
		return nil, ErrNotFound
	}

	return scanTask(rows)
}

// ListTasksByParent retrieves all tasks created by a parent, newest first.
func (s *SQLiteStore) ListTasksByParent(ctx context.Context, parentID string) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_id = ? ORDER BY created_at DESC`
	return s.queryTasks(ctx, query, parentID)
}

// ListTasksByChild retrieves all tasks assigned to a child, newest first.
func (s *SQLiteStore) ListTasksByChild(ctx context.Context, childID string) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE child_id = ? ORDER BY created_at DESC`
	return s.queryTasks(ctx, query, childID)
}

// UpdateTask updates a task's mutable fields.
// Returns ErrNotFound if the task doesn't exist.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, frequency = ?, difficulty = ?, coin_value = ?,
		    requires_approval = ?, status = ?, due_time = ?, updated_at = ?
		WHERE id = ?
	`

	var dueTimeStr *string
	if task.DueTime != nil {
		v := task.DueTime.UTC().Format(time.RFC3339)
		dueTimeStr = &v
	}

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.Frequency,
		task.Difficulty,
		task.CoinValue,
		task.RequiresApproval,
		task.Status,
		dueTimeStr,
		time.Now().UTC().Format(time.RFC3339),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteTask removes a task.
// Returns ErrNotFound if the task doesn't exist.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// queryTasks is a helper that executes a query and returns tasks
func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...any) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	return tasks, nil
}

// scanTask scans a task from the current row
func scanTask(rows *sql.Rows) (*Task, error) {
	var task Task
	var categoryID, dueTimeStr *string
	var createdAtStr, updatedAtStr string

	if err := rows.Scan(
		&task.ID,
		&task.ParentID,
		&task.ChildID,
		&categoryID,
		&task.Title,
		&task.Description,
		&task.Frequency,
		&task.Difficulty,
		&task.CoinValue,
		&task.RequiresApproval,
		&task.Status,
		&dueTimeStr,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return nil, fmt.Errorf("scanning task row: %w", err)
	}

	if categoryID != nil {
		task.CategoryID = *categoryID
	}

	var err error
	if dueTimeStr != nil {
		dueTime, err := time.Parse(time.RFC3339, *dueTimeStr)
		if err != nil {
			return nil, fmt.Errorf("parsing due_time: %w", err)
		}
		task.DueTime = &dueTime
	}

	task.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	task.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &task, nil
}
