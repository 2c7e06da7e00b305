// ABOUTME: Child profile persistence for SQLiteStore
// ABOUTME: Handles pairing codes and guarded coin balance adjustments

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// CreateChild inserts a new child profile.
// Returns ErrDuplicateCode if the pairing code is already taken.
func (s *SQLiteStore) CreateChild(ctx context.Context, child *Child) error {
	query := `
		INSERT INTO children (id, parent_id, name, age, gender, avatar_url, code, coins, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		child.ID,
		child.ParentID,
		child.Name,
		child.Age,
		child.Gender,
		child.AvatarURL,
		child.Code,
		child.Coins,
		child.CreatedAt.UTC().Format(time.RFC3339),
		child.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// Only a code collision maps to the sentinel; other constraint
		// failures (like a missing parent row) surface as plain errors so
		// callers don't retry them with fresh codes.
		if strings.Contains(err.Error(), "children.code") {
			return ErrDuplicateCode
		}
		return fmt.Errorf("inserting child: %w", err)
	}

	s.logger.Debug("created child", "id", child.ID, "parent_id", child.ParentID)
	return nil
}

const childColumns = `id, parent_id, name, age, gender, avatar_url, code, coins, created_at, updated_at`

// GetChild retrieves a child profile by ID.
// Returns ErrNotFound if no child exists.
func (s *SQLiteStore) GetChild(ctx context.Context, id string) (*Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = ?`
	return s.scanChild(s.db.QueryRowContext(ctx, query, id))
}

// GetChildByCode retrieves a child profile by its pairing code.
// Returns ErrNotFound if no child matches.
func (s *SQLiteStore) GetChildByCode(ctx context.Context, code string) (*Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE code = ?`
	return s.scanChild(s.db.QueryRowContext(ctx, query, code))
}

// ListChildren retrieves all children belonging to a parent, oldest first.
func (s *SQLiteStore) ListChildren(ctx context.Context, parentID string) ([]*Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE parent_id = ? ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying children: %w", err)
	}
	defer rows.Close()

	var children []*Child
	for rows.Next() {
		child, err := s.scanChildRow(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating child rows: %w", err)
	}

	return children, nil
}

// UpdateChild updates a child's mutable profile fields.
// Returns ErrNotFound if the child doesn't exist.
func (s *SQLiteStore) UpdateChild(ctx context.Context, child *Child) error {
	query := `
		UPDATE children
		SET name = ?, age = ?, gender = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		child.Name,
		child.Age,
		child.Gender,
		child.AvatarURL,
		time.Now().UTC().Format(time.RFC3339),
		child.ID,
	)
	if err != nil {
		return fmt.Errorf("updating child: %w", err)
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

// DeleteChild removes a child profile.
// Returns ErrNotFound if the child doesn't exist.
func (s *SQLiteStore) DeleteChild(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting child: %w", err)
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

// AdjustChildCoins atomically adds delta (which may be negative) to a child's
// coin balance and returns the updated record. The guarded UPDATE ensures the
// balance never goes negative; a failed deduction returns ErrInsufficientCoins.
func (s *SQLiteStore) AdjustChildCoins(ctx context.Context, childID string, delta int64) (*Child, error) {
	query := `
		UPDATE children
		SET coins = coins + ?, updated_at = ?
		WHERE id = ? AND coins + ? >= 0
	`

	result, err := s.db.ExecContext(ctx, query,
		delta,
		time.Now().UTC().Format(time.RFC3339),
		childID,
		delta,
	)
	if err != nil {
		return nil, fmt.Errorf("adjusting coins: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking adjust result: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing child from an insufficient balance
		if _, getErr := s.GetChild(ctx, childID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficientCoins
	}

	return s.GetChild(ctx, childID)
}

// scanChild scans a single child row
func (s *SQLiteStore) scanChild(row *sql.Row) (*Child, error) {
	var child Child
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&child.ID,
		&child.ParentID,
		&child.Name,
		&child.Age,
		&child.Gender,
		&child.AvatarURL,
		&child.Code,
		&child.Coins,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying child: %w", err)
	}

	return parseChildTimes(&child, createdAtStr, updatedAtStr)
}

// scanChildRow scans a child from a multi-row result set
func (s *SQLiteStore) scanChildRow(rows *sql.Rows) (*Child, error) {
	var child Child
	var createdAtStr, updatedAtStr string

	if err := rows.Scan(
		&child.ID,
		&child.ParentID,
		&child.Name,
		&child.Age,
		&child.Gender,
		&child.AvatarURL,
		&child.Code,
		&child.Coins,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return nil, fmt.Errorf("scanning child row: %w", err)
	}

	return parseChildTimes(&child, createdAtStr, updatedAtStr)
}

func parseChildTimes(child *Child, createdAtStr, updatedAtStr string) (*Child, error) {
	var err error
	child.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	child.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return child, nil
}
