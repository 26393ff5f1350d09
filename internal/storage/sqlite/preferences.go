package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/issuepilot/issuepilot/internal/types"
)

// UpsertPreference replaces the stored score for a (user, type, key)
// row. No blending happens here: each learning pass writes the score it
// computed, and the smoothing inside the learner carries the history.
func (s *SQLiteStorage) UpsertPreference(ctx context.Context, record *types.PreferenceRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid preference record: %w", err)
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preference_records (user_id, pref_type, pref_key, score, confidence, feedback_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, pref_type, pref_key) DO UPDATE SET
			score = excluded.score,
			confidence = excluded.confidence,
			feedback_count = excluded.feedback_count,
			updated_at = excluded.updated_at
	`, record.UserID, record.Type, record.Key, record.Score, record.Confidence, record.FeedbackCount, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// GetPreference returns one preference row, or nil if absent.
func (s *SQLiteStorage) GetPreference(ctx context.Context, userID string, prefType types.PreferenceType, key string) (*types.PreferenceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, pref_type, pref_key, score, confidence, feedback_count, updated_at
		FROM preference_records WHERE user_id = ? AND pref_type = ? AND pref_key = ?
	`, userID, prefType, key)

	var record types.PreferenceRecord
	err := row.Scan(&record.UserID, &record.Type, &record.Key, &record.Score,
		&record.Confidence, &record.FeedbackCount, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // Expected absence, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}
	return &record, nil
}

// AllPreferences returns every preference row for a user.
func (s *SQLiteStorage) AllPreferences(ctx context.Context, userID string) ([]*types.PreferenceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, pref_type, pref_key, score, confidence, feedback_count, updated_at
		FROM preference_records WHERE user_id = ?
		ORDER BY pref_type, pref_key
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var records []*types.PreferenceRecord
	for rows.Next() {
		var record types.PreferenceRecord
		if err := rows.Scan(&record.UserID, &record.Type, &record.Key, &record.Score,
			&record.Confidence, &record.FeedbackCount, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// DeletePreferences removes preference rows for a user, optionally
// narrowed by type and key, and returns how many rows were removed.
func (s *SQLiteStorage) DeletePreferences(ctx context.Context, userID string, prefType *types.PreferenceType, key *string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	query := `DELETE FROM preference_records WHERE user_id = ?`
	args := []interface{}{userID}
	if prefType != nil {
		query += ` AND pref_type = ?`
		args = append(args, *prefType)
	}
	if key != nil {
		query += ` AND pref_key = ?`
		args = append(args, *key)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete preferences: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return int(affected), nil
}
