// Package engagement tracks how recently and how often a user has
// interacted with each issue, as a decayed score in [0, 1].
package engagement

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/issuepilot/issuepilot/internal/storage"
	"github.com/issuepilot/issuepilot/internal/types"
)

// Scoring weights. Frequency saturates at five interactions; recency
// decays exponentially with a half-life of roughly two weeks.
const (
	frequencyWeight   = 0.4
	recencyWeight     = 0.6
	frequencyPerCount = 0.2
	recencyDecayRate  = 0.05 // per day

	// NeutralScore is returned when no engagement record exists.
	// Absence of data must not read as active dislike.
	NeutralScore = 0.5
)

// Tracker computes and persists per-(user, issue) engagement scores.
type Tracker struct {
	store storage.Storage
	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// NewTracker creates a new engagement tracker
func NewTracker(store storage.Storage) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Tracker{store: store, now: time.Now}, nil
}

// RecordInteraction records one interaction and recomputes the score.
// Unknown interaction kinds are rejected before any write.
func (t *Tracker) RecordInteraction(ctx context.Context, userID, issueID string, kind types.InteractionKind, contextText string) (*types.EngagementRecord, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid interaction kind: %s (must be query, view, or mention)", kind)
	}

	record, err := t.store.UpsertInteraction(ctx, userID, issueID, kind, contextText)
	if err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	score := t.computeScore(record.InteractionCount, record.LastInteraction)
	if err := t.store.SetEngagementScore(ctx, userID, issueID, score); err != nil {
		return nil, fmt.Errorf("failed to persist engagement score: %w", err)
	}
	record.Score = score
	return record, nil
}

// Score returns the user's current engagement score for an issue,
// recomputed from the stored record so decay applies between
// interactions. Returns NeutralScore when no record exists.
func (t *Tracker) Score(ctx context.Context, userID, issueID string) float64 {
	record, err := t.store.GetEngagement(ctx, userID, issueID)
	if err != nil {
		log.Printf("[ENGAGE] Failed to read engagement for %s/%s: %v (using neutral)", userID, issueID, err)
		return NeutralScore
	}
	if record == nil {
		return NeutralScore
	}
	return t.computeScore(record.InteractionCount, record.LastInteraction)
}

// TopEngaged returns the user's records ordered by stored score
// descending, ties broken stably by issue id.
func (t *Tracker) TopEngaged(ctx context.Context, userID string, limit int) ([]*types.EngagementRecord, error) {
	records, err := t.store.TopEngagement(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top engagement: %w", err)
	}
	return records, nil
}

// Stats aggregates a user's engagement activity.
type Stats struct {
	TotalInteractions int      `json:"total_interactions"`
	DistinctIssues    int      `json:"distinct_issues"`
	MeanPerIssue      float64  `json:"mean_interactions_per_issue"`
	TopIssues         []string `json:"top_issues"` // up to 5 issue ids by score
}

// GetStats aggregates the user's interaction totals and top issues.
func (t *Tracker) GetStats(ctx context.Context, userID string) (*Stats, error) {
	records, err := t.store.TopEngagement(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement records: %w", err)
	}

	stats := &Stats{}
	for _, r := range records {
		stats.TotalInteractions += r.InteractionCount
	}
	stats.DistinctIssues = len(records)
	if stats.DistinctIssues > 0 {
		stats.MeanPerIssue = float64(stats.TotalInteractions) / float64(stats.DistinctIssues)
	}
	for i, r := range records {
		if i >= 5 {
			break
		}
		stats.TopIssues = append(stats.TopIssues, r.IssueID)
	}
	return stats, nil
}

// computeScore combines frequency (saturating at 5 interactions) with
// exponentially decayed recency: 0 days -> 1.0, ~14 days -> ~0.5,
// ~60 days -> ~0.05.
func (t *Tracker) computeScore(interactionCount int, lastInteraction time.Time) float64 {
	frequency := float64(interactionCount) * frequencyPerCount
	if frequency > 1.0 {
		frequency = 1.0
	}

	days := t.now().Sub(lastInteraction).Hours() / 24
	if days < 0 {
		days = 0
	}
	recency := math.Exp(-recencyDecayRate * days)
	if recency > 1.0 {
		recency = 1.0
	}
	if recency < 0.0 {
		recency = 0.0
	}

	score := frequencyWeight*frequency + recencyWeight*recency
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}
