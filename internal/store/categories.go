// ABOUTME: Task category persistence for SQLiteStore
// ABOUTME: Simple per-parent CRUD for grouping tasks

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateCategory inserts a new task category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *Category) error {
	query := `
		INSERT INTO categories (id, parent_id, name, icon, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		category.ID,
		category.ParentID,
		category.Name,
		category.Icon,
		category.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}

	return nil
}

// GetCategory retrieves a category by ID.
// Returns ErrNotFound if no category exists.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*Category, error) {
	query := `SELECT id, parent_id, name, icon, created_at FROM categories WHERE id = ?`

	var category Category
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.ParentID,
		&category.Name,
		&category.Icon,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}

	category.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &category, nil
}

// ListCategories retrieves all categories belonging to a parent, by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, parentID string) ([]*Category, error) {
	query := `SELECT id, parent_id, name, icon, created_at FROM categories WHERE parent_id = ? ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		var category Category
		var createdAtStr string

		if err := rows.Scan(
			&category.ID,
			&category.ParentID,
			&category.Name,
			&category.Icon,
			&createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}

		category.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return categories, nil
}

// DeleteCategory removes a category.
// Returns ErrNotFound if the category doesn't exist.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
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
