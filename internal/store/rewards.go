// ABOUTME: Reward and reward claim persistence for SQLiteStore
// ABOUTME: Rewards are parent-defined; claims capture cost at redemption time

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const rewardColumns = `id, parent_id, title, description, cost, type, active, created_at, updated_at`

// CreateReward inserts a new reward.
func (s *SQLiteStore) CreateReward(ctx context.Context, reward *Reward) error {
	query := `
		INSERT INTO rewards (` + rewardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		reward.ID,
		reward.ParentID,
		reward.Title,
		reward.Description,
		reward.Cost,
		reward.Type,
		reward.Active,
		reward.CreatedAt.UTC().Format(time.RFC3339),
		reward.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting reward: %w", err)
	}

	return nil
}

// GetReward retrieves a reward by ID.
// Returns ErrNotFound if no reward exists.
func (s *SQLiteStore) GetReward(ctx context.Context, id string) (*Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE id = ?`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying reward: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying reward: %w", err)
		}
		return nil, ErrNotFound
	}

	return scanReward(rows)
}

// ListRewards retrieves rewards belonging to a parent, newest first.
// When activeOnly is set, inactive rewards are excluded.
func (s *SQLiteStore) ListRewards(ctx context.Context, parentID string, activeOnly bool) ([]*Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE parent_id = ?`
	args := []any{parentID}
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reward rows: %w", err)
	}

	return rewards, nil
}

// UpdateReward updates a reward's mutable fields.
// Returns ErrNotFound if the reward doesn't exist.
func (s *SQLiteStore) UpdateReward(ctx context.Context, reward *Reward) error {
	query := `
		UPDATE rewards
		SET title = ?, description = ?, cost = ?, type = ?, active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		reward.Title,
		reward.Description,
		reward.Cost,
		reward.Type,
		reward.Active,
		time.Now().UTC().Format(time.RFC3339),
		reward.ID,
	)
	if err != nil {
		return fmt.Errorf("updating reward: %w", err)
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

// DeleteReward removes a reward.
// Returns ErrNotFound if the reward doesn't exist.
func (s *SQLiteStore) DeleteReward(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting reward: %w", err)
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

// scanReward scans a reward from the current row
func scanReward(rows *sql.Rows) (*Reward, error) {
	var reward Reward
	var createdAtStr, updatedAtStr string

	if err := rows.Scan(
		&reward.ID,
		&reward.ParentID,
		&reward.Title,
		&reward.Description,
		&reward.Cost,
		&reward.Type,
		&reward.Active,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return nil, fmt.Errorf("scanning reward row: %w", err)
	}

	var err error
	reward.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	reward.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &reward, nil
}

// CreateRewardClaim inserts a new reward claim.
func (s *SQLiteStore) CreateRewardClaim(ctx context.Context, claim *RewardClaim) error {
	query := `
		INSERT INTO reward_claims (id, reward_id, child_id, cost, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		claim.ID,
		claim.RewardID,
		claim.ChildID,
		claim.Cost,
		claim.Status,
		claim.CreatedAt.UTC().Format(time.RFC3339),
		claim.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting reward claim: %w", err)
	}

	s.logger.Debug("created reward claim", "id", claim.ID, "reward_id", claim.RewardID, "child_id", claim.ChildID)
	return nil
}

const claimColumns = `id, reward_id, child_id, cost, status, created_at, updated_at`

// GetRewardClaim retrieves a claim by ID.
// Returns ErrNotFound if no claim exists.
func (s *SQLiteStore) GetRewardClaim(ctx context.Context, id string) (*RewardClaim, error) {
	query := `SELECT ` + claimColumns + ` FROM reward_claims WHERE id = ?`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying reward claim: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying reward claim: %w", err)
		}
		return nil, ErrNotFound
	}

	return scanClaim(rows)
}

// ListRewardClaimsByChild retrieves a child's claims, newest first.
func (s *SQLiteStore) ListRewardClaimsByChild(ctx context.Context, childID string) ([]*RewardClaim, error) {
	query := `SELECT ` + claimColumns + ` FROM reward_claims WHERE child_id = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("querying reward claims: %w", err)
	}
	defer rows.Close()

	var claims []*RewardClaim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating claim rows: %w", err)
	}

	return claims, nil
}

// ListRewardClaimsByParent retrieves claims against any of a parent's rewards,
// newest first.
func (s *SQLiteStore) ListRewardClaimsByParent(ctx context.Context, parentID string) ([]*RewardClaim, error) {
	query := `
		SELECT c.id, c.reward_id, c.child_id, c.cost, c.status, c.created_at, c.updated_at
		FROM reward_claims c
		JOIN rewards r ON r.id = c.reward_id
		WHERE r.parent_id = ?
		ORDER BY c.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying reward claims: %w", err)
	}
	defer rows.Close()

	var claims []*RewardClaim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating claim rows: %w", err)
	}

	return claims, nil
}

// UpdateRewardClaimStatus sets a claim's status and returns the updated record.
// Returns ErrNotFound if no claim matches.
func (s *SQLiteStore) UpdateRewardClaimStatus(ctx context.Context, id, status string) (*RewardClaim, error) {
	query := `UPDATE reward_claims SET status = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		status,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating reward claim: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return s.GetRewardClaim(ctx, id)
}

// scanClaim scans a reward claim from the current row
func scanClaim(rows *sql.Rows) (*RewardClaim, error) {
	var claim RewardClaim
	var createdAtStr, updatedAtStr string

	if err := rows.Scan(
		&claim.ID,
		&claim.RewardID,
		&claim.ChildID,
		&claim.Cost,
		&claim.Status,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return nil, fmt.Errorf("scanning claim row: %w", err)
	}

	var err error
	claim.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	claim.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &claim, nil
}
