// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides family/task/message persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		// Ensure parent directory exists
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			verified INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS children (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			name TEXT NOT NULL,
			age INTEGER NOT NULL DEFAULT 0,
			gender TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL UNIQUE,
			coins INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_children_parent_id
			ON children(parent_id);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_categories_parent_id
			ON categories(parent_id);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			child_id TEXT NOT NULL,
			category_id TEXT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			frequency TEXT NOT NULL DEFAULT 'daily',
			difficulty TEXT NOT NULL DEFAULT 'easy',
			coin_value INTEGER NOT NULL DEFAULT 0,
			requires_approval INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			due_time DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_parent_id
			ON tasks(parent_id);

		CREATE INDEX IF NOT EXISTS idx_tasks_child_id
			ON tasks(child_id);

		CREATE TABLE IF NOT EXISTS rewards (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			cost INTEGER NOT NULL,
			type TEXT NOT NULL DEFAULT 'custom',
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_rewards_parent_id
			ON rewards(parent_id);

		CREATE TABLE IF NOT EXISTS reward_claims (
			id TEXT PRIMARY KEY,
			reward_id TEXT NOT NULL,
			child_id TEXT NOT NULL,
			cost INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (reward_id) REFERENCES rewards(id)
		);

		CREATE INDEX IF NOT EXISTS idx_reward_claims_child_id
			ON reward_claims(child_id);

		CREATE TABLE IF NOT EXISTS challenges (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			categories TEXT NOT NULL DEFAULT '',
			days_remaining INTEGER NOT NULL DEFAULT 0,
			image TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			child_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			sender_role TEXT NOT NULL,
			content TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages(parent_id, child_id, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
