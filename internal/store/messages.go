// ABOUTME: Chat message persistence for SQLiteStore
// ABOUTME: Messages are append-only; the only mutation is flipping the read flag

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const messageColumns = `id, parent_id, child_id, sender_id, sender_role, content, read, created_at`

// messageTimeFormat zero-pads the fraction to nine digits so the TEXT
// column sorts lexicographically in time order. RFC3339Nano trims trailing
// zeros, which would sort "...05.5Z" after "...05.55Z".
const messageTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// InsertMessage appends a message to a conversation.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ParentID,
		msg.ChildID,
		msg.SenderID,
		msg.SenderRole,
		msg.Content,
		msg.Read,
		msg.CreatedAt.UTC().Format(messageTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("inserted message", "id", msg.ID, "parent_id", msg.ParentID, "child_id", msg.ChildID)
	return nil
}

// GetMessage retrieves a message by ID.
// Returns ErrNotFound if no message exists.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying message: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying message: %w", err)
		}
		return nil, ErrNotFound
	}

	return scanMessage(rows)
}

// MarkMessageRead flags a message as read and returns the updated record.
// Marking an already-read message is a no-op that still returns the message.
// Returns ErrNotFound if no message matches.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id string) (*Message, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE messages SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("marking message read: %w", err)
	}

	// The UPDATE affects zero rows both for missing messages and for
	// already-read ones, so the follow-up SELECT decides which it was.
	return s.GetMessage(ctx, id)
}

// ListConversationMessages retrieves the most recent messages of a
// conversation, returned in ascending chronological order. The limit is
// clamped to [1, 200]; zero or negative falls back to the default of 50.
func (s *SQLiteStore) ListConversationMessages(ctx context.Context, parentID, childID string, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	// Grab the newest N descending, then flip back to ascending so
	// callers render oldest-first. Ties on created_at break on id so the
	// order is stable.
	query := `
		SELECT ` + messageColumns + ` FROM (
			SELECT ` + messageColumns + `
			FROM messages
			WHERE parent_id = ? AND child_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, parentID, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversation messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// CountConversationMessages returns the total number of messages in a conversation.
func (s *SQLiteStore) CountConversationMessages(ctx context.Context, parentID, childID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE parent_id = ? AND child_id = ?`,
		parentID, childID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting conversation messages: %w", err)
	}

	return count, nil
}

// scanMessage scans a message from the current row
func scanMessage(rows *sql.Rows) (*Message, error) {
	var msg Message
	var createdAtStr string

	if err := rows.Scan(
		&msg.ID,
		&msg.ParentID,
		&msg.ChildID,
		&msg.SenderID,
		&msg.SenderRole,
		&msg.Content,
		&msg.Read,
		&createdAtStr,
	); err != nil {
		return nil, fmt.Errorf("scanning message row: %w", err)
	}

	var err error
	msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &msg, nil
}
