// Package tracker defines the narrow contract to the upstream issue
// tracker and the single adapter that converts its wire payloads into
// IssueSnapshot values. No other package parses tracker payloads.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/issuepilot/issuepilot/internal/types"
)

// Client is the upstream tracker capability the engine consumes.
// A nil snapshot with a nil error means the issue does not exist.
type Client interface {
	GetIssue(ctx context.Context, issueID string) (*types.IssueSnapshot, error)
	ListIssues(ctx context.Context, windowDays int) ([]*types.IssueSnapshot, error)
}

// WireIssue mirrors the subset of an upstream issue payload the engine
// cares about. Concrete Client implementations decode their transport
// format into this shape and hand it to FromWire.
type WireIssue struct {
	ID          string         `json:"id"`
	UUID        string         `json:"uuid,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	State       string         `json:"state"`
	Priority    int            `json:"priority"`
	Team        string         `json:"team,omitempty"`
	Assignee    string         `json:"assignee,omitempty"`
	Labels      []string       `json:"labels,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CanceledAt  *time.Time     `json:"canceled_at,omitempty"`
	Comments    []WireComment  `json:"comments,omitempty"`
	Relations   []WireRelation `json:"relations,omitempty"`
}

// WireComment is one comment in an upstream payload.
type WireComment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// WireRelation is one typed issue link in an upstream payload.
type WireRelation struct {
	Type    string `json:"type"`
	IssueID string `json:"issue_id"`
}

// FromWire converts an upstream payload into a validated snapshot. An
// absent tracker UUID gets a locally generated one so every snapshot is
// individually addressable.
func FromWire(w *WireIssue, fetchedAt time.Time) (*types.IssueSnapshot, error) {
	if w == nil {
		return nil, fmt.Errorf("wire issue is nil")
	}

	id := w.UUID
	if id == "" {
		id = uuid.NewString()
	}

	snapshot := &types.IssueSnapshot{
		ID:          w.ID,
		UUID:        id,
		Title:       w.Title,
		Description: w.Description,
		State:       w.State,
		Priority:    w.Priority,
		Team:        w.Team,
		Assignee:    w.Assignee,
		Labels:      append([]string(nil), w.Labels...),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		CompletedAt: w.CompletedAt,
		CanceledAt:  w.CanceledAt,
		FetchedAt:   fetchedAt.UTC(),
	}
	for _, c := range w.Comments {
		snapshot.Comments = append(snapshot.Comments, types.Comment{
			Author:    c.Author,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, r := range w.Relations {
		snapshot.Relations = append(snapshot.Relations, types.Relation{
			Type:    r.Type,
			IssueID: r.IssueID,
		})
	}

	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid issue payload %q: %w", w.ID, err)
	}
	return snapshot, nil
}
