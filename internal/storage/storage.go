package storage

import (
	"context"

	"github.com/issuepilot/issuepilot/internal/storage/sqlite"
	"github.com/issuepilot/issuepilot/internal/types"
)

// Storage defines the persistence contracts consumed by the engine:
// the issue snapshot cache, the append-only feedback log, per-user
// engagement records, and learned preference rows.
//
// Expected absence is modeled as (nil, nil), never as an error. Writes
// validate their inputs and reject out-of-range values outright.
type Storage interface {
	// Issue snapshot cache
	SaveIssue(ctx context.Context, issue *types.IssueSnapshot) error
	GetIssue(ctx context.Context, id string) (*types.IssueSnapshot, error)
	ListIssues(ctx context.Context, windowDays int) ([]*types.IssueSnapshot, error)

	// Feedback log (append-only)
	AppendFeedback(ctx context.Context, event *types.FeedbackEvent) error
	RecentFeedback(ctx context.Context, windowDays, limit int, kind *types.FeedbackKind) ([]*types.FeedbackEvent, error)

	// Engagement records, one per (user, issue)
	UpsertInteraction(ctx context.Context, userID, issueID string, kind types.InteractionKind, context string) (*types.EngagementRecord, error)
	SetEngagementScore(ctx context.Context, userID, issueID string, score float64) error
	GetEngagement(ctx context.Context, userID, issueID string) (*types.EngagementRecord, error)
	TopEngagement(ctx context.Context, userID string, limit int) ([]*types.EngagementRecord, error)

	// Preference rows, one per (user, type, key)
	UpsertPreference(ctx context.Context, record *types.PreferenceRecord) error
	GetPreference(ctx context.Context, userID string, prefType types.PreferenceType, key string) (*types.PreferenceRecord, error)
	AllPreferences(ctx context.Context, userID string) ([]*types.PreferenceRecord, error)
	DeletePreferences(ctx context.Context, userID string, prefType *types.PreferenceType, key *string) (int, error)

	// Lifecycle
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: ".issuepilot/issuepilot.db"
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: ".issuepilot/issuepilot.db",
	}
}

// NewStorage creates a new SQLite storage backend
// The ctx parameter is currently unused but kept for API consistency
// and future extension possibilities
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	return sqlite.New(cfg.Path)
}
