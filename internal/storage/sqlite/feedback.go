package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/issuepilot/issuepilot/internal/types"
)

// AppendFeedback appends one feedback event to the log. Events are
// never updated or deleted by the engine; retention belongs to callers.
func (s *SQLiteStorage) AppendFeedback(ctx context.Context, event *types.FeedbackEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid feedback event: %w", err)
	}

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_events (user_id, kind, metadata, created_at)
		VALUES (?, ?, ?, ?)
	`, event.UserID, event.Kind, string(meta), createdAt)
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		event.ID = id
	}
	return nil
}

// RecentFeedback returns feedback events within the window, newest
// first, optionally filtered by kind. limit <= 0 means no limit.
func (s *SQLiteStorage) RecentFeedback(ctx context.Context, windowDays, limit int, kind *types.FeedbackKind) ([]*types.FeedbackEvent, error) {
	query := `SELECT id, user_id, kind, metadata, created_at FROM feedback_events
		WHERE created_at >= datetime('now', ?)`
	args := []interface{}{fmt.Sprintf("-%d days", windowDays)}

	if kind != nil {
		query += ` AND kind = ?`
		args = append(args, *kind)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var events []*types.FeedbackEvent
	for rows.Next() {
		var event types.FeedbackEvent
		var meta string
		if err := rows.Scan(&event.ID, &event.UserID, &event.Kind, &meta, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback event: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
