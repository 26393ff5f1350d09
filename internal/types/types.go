package types

import (
	"fmt"
	"strings"
	"time"
)

// IssueSnapshot is an immutable point-in-time view of an externally
// tracked issue. Snapshots are created by the tracker adapter, cached in
// storage, and superseded (never mutated) by a newer snapshot on re-fetch.
type IssueSnapshot struct {
	ID          string     `json:"id"`   // stable human key, e.g. "ENG-142"
	UUID        string     `json:"uuid"` // internal UUID from the tracker
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       string     `json:"state"`    // free-text lifecycle state from the tracker
	Priority    int        `json:"priority"` // tracker's numeric priority label (0 = urgent .. 4 = none)
	Team        string     `json:"team,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CanceledAt  *time.Time `json:"canceled_at,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
	Relations   []Relation `json:"relations,omitempty"`
	FetchedAt   time.Time  `json:"fetched_at"` // when this snapshot was pulled from the tracker
}

// Relation is a typed link from this issue to another one, as reported
// by the upstream tracker.
type Relation struct {
	Type    string `json:"type"` // e.g. "blocks", "duplicate", "related"
	IssueID string `json:"issue_id"`
}

// Validate checks if the snapshot has valid field values
func (s *IssueSnapshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(s.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(s.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(s.Title))
	}
	if s.Priority < 0 || s.Priority > 4 {
		return fmt.Errorf("priority must be between 0 and 4 (got %d)", s.Priority)
	}
	return nil
}

// SearchText returns the text used for embeddings and topic detection:
// title plus description, newline separated.
func (s *IssueSnapshot) SearchText() string {
	if s.Description == "" {
		return s.Title
	}
	return s.Title + "\n" + s.Description
}

// HasLabel reports whether any label contains the given substring,
// case-insensitively.
func (s *IssueSnapshot) HasLabel(substr string) bool {
	substr = strings.ToLower(substr)
	for _, l := range s.Labels {
		if strings.Contains(strings.ToLower(l), substr) {
			return true
		}
	}
	return false
}

// Comment is a single comment on an issue
type Comment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackKind categorizes a feedback event
type FeedbackKind string

const (
	FeedbackPositive    FeedbackKind = "positive"
	FeedbackNegative    FeedbackKind = "negative"
	FeedbackIssueAction FeedbackKind = "issue_action"
)

// IsValid checks if the feedback kind value is valid
func (k FeedbackKind) IsValid() bool {
	switch k {
	case FeedbackPositive, FeedbackNegative, FeedbackIssueAction:
		return true
	}
	return false
}

// FeedbackEvent is a single append-only feedback record from a user.
// The issue reference, if any, lives in Metadata under "issue_id".
type FeedbackEvent struct {
	ID        int64             `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      FeedbackKind      `json:"kind"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// IssueID returns the issue referenced by this event, or "" if none.
func (e *FeedbackEvent) IssueID() string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata["issue_id"]
}

// Validate checks if the feedback event has valid field values
func (e *FeedbackEvent) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("invalid feedback kind: %s", e.Kind)
	}
	return nil
}

// InteractionKind categorizes a user's interaction with an issue
type InteractionKind string

const (
	InteractionQuery   InteractionKind = "query"
	InteractionView    InteractionKind = "view"
	InteractionMention InteractionKind = "mention"
)

// IsValid checks if the interaction kind value is valid
func (k InteractionKind) IsValid() bool {
	switch k {
	case InteractionQuery, InteractionView, InteractionMention:
		return true
	}
	return false
}

// MaxContextLength is the maximum stored length of an interaction's
// free-text context. Longer contexts are truncated on write.
const MaxContextLength = 200

// EngagementRecord tracks one user's decayed engagement with one issue.
// There is exactly one record per (user, issue); interactions upsert it.
type EngagementRecord struct {
	UserID           string          `json:"user_id"`
	IssueID          string          `json:"issue_id"`
	Kind             InteractionKind `json:"kind"` // most recent interaction kind
	InteractionCount int             `json:"interaction_count"`
	LastInteraction  time.Time       `json:"last_interaction"`
	Score            float64         `json:"engagement_score"`
	Context          string          `json:"context,omitempty"`
}

// Validate checks if the engagement record has valid field values
func (r *EngagementRecord) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if r.IssueID == "" {
		return fmt.Errorf("issue_id is required")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid interaction kind: %s", r.Kind)
	}
	if r.InteractionCount < 1 {
		return fmt.Errorf("interaction_count must be at least 1 (got %d)", r.InteractionCount)
	}
	if r.Score < 0.0 || r.Score > 1.0 {
		return fmt.Errorf("engagement_score must be between 0.0 and 1.0 (got %.4f)", r.Score)
	}
	if len(r.Context) > MaxContextLength {
		return fmt.Errorf("context must be %d characters or less (got %d)", MaxContextLength, len(r.Context))
	}
	return nil
}

// PreferenceType categorizes what a preference score applies to
type PreferenceType string

const (
	PreferenceTopic PreferenceType = "topic"
	PreferenceTeam  PreferenceType = "team"
	PreferenceLabel PreferenceType = "label"
)

// IsValid checks if the preference type value is valid
func (t PreferenceType) IsValid() bool {
	switch t {
	case PreferenceTopic, PreferenceTeam, PreferenceLabel:
		return true
	}
	return false
}

// PreferenceRecord is one user's learned preference for a single
// topic/team/label key. One row per (user, type, key); each learning
// pass replaces the prior score outright.
type PreferenceRecord struct {
	UserID        string         `json:"user_id"`
	Type          PreferenceType `json:"type"`
	Key           string         `json:"key"`
	Score         float64        `json:"score"`
	Confidence    float64        `json:"confidence"`
	FeedbackCount int            `json:"feedback_count"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Validate checks if the preference record has valid field values
func (r *PreferenceRecord) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("invalid preference type: %s", r.Type)
	}
	if r.Key == "" {
		return fmt.Errorf("key is required")
	}
	if r.Score < 0.0 || r.Score > 1.0 {
		return fmt.Errorf("score must be between 0.0 and 1.0 (got %.4f)", r.Score)
	}
	if r.Confidence < 0.0 || r.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0 (got %.4f)", r.Confidence)
	}
	if r.FeedbackCount < 0 {
		return fmt.Errorf("feedback_count cannot be negative (got %d)", r.FeedbackCount)
	}
	return nil
}

// DuplicatePair is a derived (not persisted) near-duplicate finding.
// IssueA sorts lexicographically before IssueB so each unordered pair is
// represented exactly once.
type DuplicatePair struct {
	IssueA     string  `json:"issue_a"`
	IssueB     string  `json:"issue_b"`
	Similarity float64 `json:"similarity"`
	Suggestion string  `json:"suggestion"`
}

// Validate checks if the duplicate pair has valid field values
func (p *DuplicatePair) Validate() error {
	if p.IssueA == "" || p.IssueB == "" {
		return fmt.Errorf("both issue ids are required")
	}
	if p.IssueA >= p.IssueB {
		return fmt.Errorf("issue_a must sort before issue_b (got %q, %q)", p.IssueA, p.IssueB)
	}
	if p.Similarity <= 0.0 || p.Similarity > 1.0 {
		return fmt.Errorf("similarity must be in (0.0, 1.0] (got %.4f)", p.Similarity)
	}
	return nil
}
