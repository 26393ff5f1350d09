// Package preferences learns a user's topic, team, and label
// preferences from their feedback history, using add-one smoothed
// positive/negative counts.
package preferences

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/issuepilot/issuepilot/internal/storage"
	"github.com/issuepilot/issuepilot/internal/types"
)

// Score band boundaries: keys at or above PreferredThreshold are
// "preferred", at or below DislikedThreshold "disliked"; the band in
// between is neutral and appears only in the raw score maps.
const (
	PreferredThreshold = 0.6
	DislikedThreshold  = 0.4

	confidenceSaturation = 20 // feedback events for full confidence
	engagementSaturation = 30 // feedback events for full engagement proxy
)

// IssueLookup resolves an issue id to its latest snapshot.
// A nil snapshot with nil error means the issue is unknown.
type IssueLookup func(ctx context.Context, issueID string) (*types.IssueSnapshot, error)

// Bundle is the result of one learning pass.
type Bundle struct {
	UserID      string             `json:"user_id"`
	TopicScores map[string]float64 `json:"topic_scores"`
	TeamScores  map[string]float64 `json:"team_scores"`
	LabelScores map[string]float64 `json:"label_scores"`

	PreferredTopics []string `json:"preferred_topics"`
	DislikedTopics  []string `json:"disliked_topics"`

	// Confidence grows with total feedback volume, saturating at 20 events.
	Confidence float64 `json:"confidence"`

	// EngagementProxy is a volume-based activity signal, saturating at
	// 30 events. It is NOT the per-issue engagement score; the ranker
	// gets that from the engagement tracker.
	EngagementProxy float64 `json:"engagement_proxy"`

	FeedbackCount int `json:"feedback_count"`
}

// TopicScore returns the learned score for a topic, or the neutral 0.5.
func (b *Bundle) TopicScore(topic string) float64 {
	if s, ok := b.TopicScores[topic]; ok {
		return s
	}
	return 0.5
}

// TeamScore returns the learned score for a team, or the neutral 0.5.
func (b *Bundle) TeamScore(team string) float64 {
	if s, ok := b.TeamScores[team]; ok {
		return s
	}
	return 0.5
}

// LabelScore returns the learned score for a label, or the neutral 0.5.
func (b *Bundle) LabelScore(label string) float64 {
	if s, ok := b.LabelScores[label]; ok {
		return s
	}
	return 0.5
}

// Learner aggregates feedback events into preference scores.
type Learner struct {
	store storage.Storage
}

// NewLearner creates a new preference learner
func NewLearner(store storage.Storage) (*Learner, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Learner{store: store}, nil
}

// counts accumulates positive/negative tallies per key
type counts struct {
	positive int
	negative int
}

// laplace computes (pos+1)/(pos+neg+2). The add-one smoothing keeps the
// score strictly inside (0, 1) and makes pos == neg land exactly on 0.5.
func laplace(c counts) float64 {
	return float64(c.positive+1) / float64(c.positive+c.negative+2)
}

// Learn runs one learning pass over the user's feedback within the
// window. Events whose issues cannot be resolved contribute to the
// totals but not to any key's counts.
func (l *Learner) Learn(ctx context.Context, userID string, windowDays int, lookup IssueLookup) (*Bundle, error) {
	if lookup == nil {
		return nil, fmt.Errorf("issue lookup is required")
	}

	events, err := l.store.RecentFeedback(ctx, windowDays, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}

	topicCounts := map[string]counts{}
	teamCounts := map[string]counts{}
	labelCounts := map[string]counts{}
	total := 0

	for _, event := range events {
		if event.UserID != userID {
			continue
		}
		total++

		positive := event.Kind == types.FeedbackPositive
		if !positive && event.Kind != types.FeedbackNegative {
			// issue_action events count toward volume but carry no
			// positive/negative signal
			continue
		}

		issueID := event.IssueID()
		if issueID == "" {
			continue
		}
		issue, err := lookup(ctx, issueID)
		if err != nil {
			log.Printf("[PREFS] Failed to resolve issue %s: %v (skipping event)", issueID, err)
			continue
		}
		if issue == nil {
			continue
		}

		for _, topic := range DetectTopics(issue.SearchText()) {
			topicCounts[topic] = bump(topicCounts[topic], positive)
		}
		if issue.Team != "" {
			teamCounts[issue.Team] = bump(teamCounts[issue.Team], positive)
		}
		for _, label := range issue.Labels {
			labelCounts[label] = bump(labelCounts[label], positive)
		}
	}

	bundle := &Bundle{
		UserID:        userID,
		TopicScores:   scoreMap(topicCounts),
		TeamScores:    scoreMap(teamCounts),
		LabelScores:   scoreMap(labelCounts),
		FeedbackCount: total,
	}
	bundle.Confidence = saturate(total, confidenceSaturation)
	bundle.EngagementProxy = saturate(total, engagementSaturation)

	for _, topic := range topicOrder {
		score, ok := bundle.TopicScores[topic]
		if !ok {
			continue
		}
		switch {
		case score >= PreferredThreshold:
			bundle.PreferredTopics = append(bundle.PreferredTopics, topic)
		case score <= DislikedThreshold:
			bundle.DislikedTopics = append(bundle.DislikedTopics, topic)
		}
	}

	return bundle, nil
}

// Persist writes the bundle's scores to the preference store. Each
// (user, type, key) row is replaced outright; the smoothing inside the
// learner already encodes historical weight via counts.
func (l *Learner) Persist(ctx context.Context, bundle *Bundle) error {
	if bundle == nil {
		return fmt.Errorf("bundle cannot be nil")
	}

	now := time.Now().UTC()
	write := func(prefType types.PreferenceType, scores map[string]float64) error {
		for key, score := range scores {
			record := &types.PreferenceRecord{
				UserID:        bundle.UserID,
				Type:          prefType,
				Key:           key,
				Score:         score,
				Confidence:    bundle.Confidence,
				FeedbackCount: bundle.FeedbackCount,
				UpdatedAt:     now,
			}
			if err := l.store.UpsertPreference(ctx, record); err != nil {
				return fmt.Errorf("failed to persist %s/%s: %w", prefType, key, err)
			}
		}
		return nil
	}

	if err := write(types.PreferenceTopic, bundle.TopicScores); err != nil {
		return err
	}
	if err := write(types.PreferenceTeam, bundle.TeamScores); err != nil {
		return err
	}
	return write(types.PreferenceLabel, bundle.LabelScores)
}

// LearnAndPersist runs a learning pass and writes the result.
func (l *Learner) LearnAndPersist(ctx context.Context, userID string, windowDays int, lookup IssueLookup) (*Bundle, error) {
	bundle, err := l.Learn(ctx, userID, windowDays, lookup)
	if err != nil {
		return nil, err
	}
	if err := l.Persist(ctx, bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

// Load reconstructs a Bundle from previously persisted preference rows.
// Used by the ranker so a briefing pass does not have to re-learn.
func (l *Learner) Load(ctx context.Context, userID string) (*Bundle, error) {
	records, err := l.store.AllPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	bundle := &Bundle{
		UserID:      userID,
		TopicScores: map[string]float64{},
		TeamScores:  map[string]float64{},
		LabelScores: map[string]float64{},
	}
	for _, record := range records {
		switch record.Type {
		case types.PreferenceTopic:
			bundle.TopicScores[record.Key] = record.Score
		case types.PreferenceTeam:
			bundle.TeamScores[record.Key] = record.Score
		case types.PreferenceLabel:
			bundle.LabelScores[record.Key] = record.Score
		}
		if record.Confidence > bundle.Confidence {
			bundle.Confidence = record.Confidence
		}
		if record.FeedbackCount > bundle.FeedbackCount {
			bundle.FeedbackCount = record.FeedbackCount
		}
	}
	return bundle, nil
}

func bump(c counts, positive bool) counts {
	if positive {
		c.positive++
	} else {
		c.negative++
	}
	return c
}

func scoreMap(m map[string]counts) map[string]float64 {
	scores := make(map[string]float64, len(m))
	for key, c := range m {
		scores[key] = laplace(c)
	}
	return scores
}

func saturate(count, limit int) float64 {
	v := float64(count) / float64(limit)
	if v > 1.0 {
		return 1.0
	}
	return v
}
