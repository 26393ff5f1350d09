package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/issuepilot/issuepilot/internal/types"
)

// UpsertInteraction records one interaction atomically: the first
// interaction for a (user, issue) pair creates the row, later ones
// increment the count and refresh the timestamp. The caller-supplied
// context text is truncated to the storage limit here so cores never
// have to worry about it.
func (s *SQLiteStorage) UpsertInteraction(ctx context.Context, userID, issueID string, kind types.InteractionKind, contextText string) (*types.EngagementRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if issueID == "" {
		return nil, fmt.Errorf("issue_id is required")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid interaction kind: %s", kind)
	}
	if len(contextText) > types.MaxContextLength {
		contextText = contextText[:types.MaxContextLength]
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO engagement_records (user_id, issue_id, kind, interaction_count, last_interaction, engagement_score, context)
		VALUES (?, ?, ?, 1, ?, 0.5, ?)
		ON CONFLICT(user_id, issue_id) DO UPDATE SET
			kind = excluded.kind,
			interaction_count = interaction_count + 1,
			last_interaction = excluded.last_interaction,
			context = excluded.context
	`, userID, issueID, kind, now, contextText)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert interaction: %w", err)
	}

	record, err := s.GetEngagement(ctx, userID, issueID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("engagement record missing after upsert for %s/%s", userID, issueID)
	}
	return record, nil
}

// SetEngagementScore persists a recomputed score for a (user, issue)
// pair. Out-of-range scores are rejected, never coerced.
func (s *SQLiteStorage) SetEngagementScore(ctx context.Context, userID, issueID string, score float64) error {
	if score < 0.0 || score > 1.0 {
		return fmt.Errorf("engagement_score must be between 0.0 and 1.0 (got %.4f)", score)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE engagement_records SET engagement_score = ?
		WHERE user_id = ? AND issue_id = ?
	`, score, userID, issueID)
	if err != nil {
		return fmt.Errorf("failed to set engagement score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no engagement record for %s/%s", userID, issueID)
	}
	return nil
}

// GetEngagement returns the record for a (user, issue) pair, or nil if
// the user has never interacted with the issue.
func (s *SQLiteStorage) GetEngagement(ctx context.Context, userID, issueID string) (*types.EngagementRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, issue_id, kind, interaction_count, last_interaction, engagement_score, context
		FROM engagement_records WHERE user_id = ? AND issue_id = ?
	`, userID, issueID)

	var record types.EngagementRecord
	err := row.Scan(&record.UserID, &record.IssueID, &record.Kind, &record.InteractionCount,
		&record.LastInteraction, &record.Score, &record.Context)
	if err == sql.ErrNoRows {
		return nil, nil // Expected absence, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get engagement record: %w", err)
	}
	return &record, nil
}

// TopEngagement returns the user's records ordered by score descending.
// Ties break by issue id so the ordering is stable across calls.
// limit <= 0 means no limit.
func (s *SQLiteStorage) TopEngagement(ctx context.Context, userID string, limit int) ([]*types.EngagementRecord, error) {
	query := `
		SELECT user_id, issue_id, kind, interaction_count, last_interaction, engagement_score, context
		FROM engagement_records WHERE user_id = ?
		ORDER BY engagement_score DESC, issue_id ASC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top engagement: %w", err)
	}
	defer rows.Close()

	var records []*types.EngagementRecord
	for rows.Next() {
		var record types.EngagementRecord
		if err := rows.Scan(&record.UserID, &record.IssueID, &record.Kind, &record.InteractionCount,
			&record.LastInteraction, &record.Score, &record.Context); err != nil {
			return nil, fmt.Errorf("failed to scan engagement record: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
