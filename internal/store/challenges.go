// ABOUTME: Site-wide challenge persistence for SQLiteStore
// ABOUTME: Challenges are global, not parent-scoped; titles are unique

package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const challengeColumns = `id, title, description, categories, days_remaining, image, created_at`

// CreateChallenge inserts a new challenge.
// Returns ErrDuplicateTitle if the title is already taken.
func (s *SQLiteStore) CreateChallenge(ctx context.Context, challenge *Challenge) error {
	query := `
		INSERT INTO challenges (` + challengeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		challenge.ID,
		challenge.Title,
		challenge.Description,
		strings.Join(challenge.Categories, ","),
		challenge.DaysRemaining,
		challenge.Image,
		challenge.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "challenges.title") {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("inserting challenge: %w", err)
	}

	s.logger.Debug("created challenge", "id", challenge.ID, "title", challenge.Title)
	return nil
}

// ListChallenges retrieves all challenges, newest first.
func (s *SQLiteStore) ListChallenges(ctx context.Context) ([]*Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*Challenge
	for rows.Next() {
		var challenge Challenge
		var categoriesStr, createdAtStr string

		if err := rows.Scan(
			&challenge.ID,
			&challenge.Title,
			&challenge.Description,
			&categoriesStr,
			&challenge.DaysRemaining,
			&challenge.Image,
			&createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning challenge row: %w", err)
		}

		if categoriesStr != "" {
			challenge.Categories = strings.Split(categoriesStr, ",")
		} else {
			challenge.Categories = []string{}
		}
		challenge.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		challenges = append(challenges, &challenge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating challenge rows: %w", err)
	}

	return challenges, nil
}
