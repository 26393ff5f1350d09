package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/issuepilot/issuepilot/internal/types"
)

// SaveIssue upserts the latest snapshot for an issue. A re-fetch
// replaces the whole row; snapshots are never partially mutated.
func (s *SQLiteStorage) SaveIssue(ctx context.Context, issue *types.IssueSnapshot) error {
	if issue == nil {
		return fmt.Errorf("issue cannot be nil")
	}
	if err := issue.Validate(); err != nil {
		return fmt.Errorf("invalid issue: %w", err)
	}

	labels, err := json.Marshal(issue.Labels)
	if err != nil {
		return fmt.Errorf("failed to marshal labels: %w", err)
	}
	comments, err := json.Marshal(issue.Comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}
	relations, err := json.Marshal(issue.Relations)
	if err != nil {
		return fmt.Errorf("failed to marshal relations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO issues (id, uuid, title, description, state, priority, team, assignee,
			labels, comments, relations, created_at, updated_at, completed_at, canceled_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uuid = excluded.uuid,
			title = excluded.title,
			description = excluded.description,
			state = excluded.state,
			priority = excluded.priority,
			team = excluded.team,
			assignee = excluded.assignee,
			labels = excluded.labels,
			comments = excluded.comments,
			relations = excluded.relations,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			completed_at = excluded.completed_at,
			canceled_at = excluded.canceled_at,
			fetched_at = excluded.fetched_at
	`, issue.ID, issue.UUID, issue.Title, issue.Description, issue.State, issue.Priority,
		issue.Team, issue.Assignee, string(labels), string(comments), string(relations),
		issue.CreatedAt, issue.UpdatedAt, issue.CompletedAt, issue.CanceledAt, issue.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to save issue: %w", err)
	}
	return nil
}

// GetIssue returns the cached snapshot for an issue, or nil if none.
func (s *SQLiteStorage) GetIssue(ctx context.Context, id string) (*types.IssueSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, title, description, state, priority, team, assignee,
			labels, comments, relations, created_at, updated_at, completed_at, canceled_at, fetched_at
		FROM issues WHERE id = ?
	`, id)

	issue, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, nil // Expected absence, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %s: %w", id, err)
	}
	return issue, nil
}

// ListIssues returns all cached snapshots updated within the window.
// windowDays <= 0 means no window (all cached issues).
func (s *SQLiteStorage) ListIssues(ctx context.Context, windowDays int) ([]*types.IssueSnapshot, error) {
	query := `
		SELECT id, uuid, title, description, state, priority, team, assignee,
			labels, comments, relations, created_at, updated_at, completed_at, canceled_at, fetched_at
		FROM issues`
	args := []interface{}{}
	if windowDays > 0 {
		query += ` WHERE updated_at >= datetime('now', ?)`
		args = append(args, fmt.Sprintf("-%d days", windowDays))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*types.IssueSnapshot
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// scanner abstracts over sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(row scanner) (*types.IssueSnapshot, error) {
	var issue types.IssueSnapshot
	var labels, comments, relations string

	err := row.Scan(&issue.ID, &issue.UUID, &issue.Title, &issue.Description, &issue.State,
		&issue.Priority, &issue.Team, &issue.Assignee, &labels, &comments, &relations,
		&issue.CreatedAt, &issue.UpdatedAt, &issue.CompletedAt, &issue.CanceledAt, &issue.FetchedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(labels), &issue.Labels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
	}
	if err := json.Unmarshal([]byte(comments), &issue.Comments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
	}
	if err := json.Unmarshal([]byte(relations), &issue.Relations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relations: %w", err)
	}
	return &issue, nil
}
