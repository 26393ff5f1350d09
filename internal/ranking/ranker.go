// Package ranking turns an analyzer base priority into a personalized
// priority by blending learned preferences and engagement into a
// multiplicative boost.
package ranking

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/issuepilot/issuepilot/internal/preferences"
	"github.com/issuepilot/issuepilot/internal/types"
)

const (
	// MaxPriority is the ceiling for personalized priorities.
	MaxPriority = 10.0

	// engagementWeight scales the engagement score into a boost of at
	// most +0.3.
	engagementWeight = 0.3

	neutralScore = 0.5
)

// PreferenceSource loads a user's learned preference bundle.
type PreferenceSource interface {
	Load(ctx context.Context, userID string) (*preferences.Bundle, error)
}

// EngagementSource scores a user's engagement with an issue in [0, 1].
// Implementations degrade to a neutral score on failure rather than
// returning an error.
type EngagementSource interface {
	Score(ctx context.Context, userID, issueID string) float64
}

// Personalize computes the personalized priority for one issue:
//
//	base * (1 + (avgPreference - 0.5) + engagement*0.3)
//
// capped at MaxPriority. avgPreference averages the issue's topic, team
// and label scores, each defaulting to the neutral 0.5 when the bundle
// has nothing to say. A nil bundle returns the base priority unchanged.
func Personalize(issue *types.IssueSnapshot, basePriority int, prefs *preferences.Bundle, engagementScore float64) float64 {
	base := float64(basePriority)
	if prefs == nil || issue == nil {
		return min(base, MaxPriority)
	}

	avgPreference := (topicScore(issue, prefs) + prefs.TeamScore(issue.Team) + labelScore(issue, prefs)) / 3.0
	preferenceBoost := avgPreference - neutralScore

	if engagementScore < 0 {
		engagementScore = 0
	} else if engagementScore > 1 {
		engagementScore = 1
	}
	engagementBoost := engagementScore * engagementWeight

	return min(base*(1.0+preferenceBoost+engagementBoost), MaxPriority)
}

// topicScore averages the preference scores of the topics detected in
// the issue text, or returns the neutral score when none match.
func topicScore(issue *types.IssueSnapshot, prefs *preferences.Bundle) float64 {
	topics := preferences.DetectTopics(issue.SearchText())
	if len(topics) == 0 {
		return neutralScore
	}
	var sum float64
	for _, topic := range topics {
		sum += prefs.TopicScore(topic)
	}
	return sum / float64(len(topics))
}

// labelScore averages the preference scores of the issue's labels, or
// returns the neutral score when it has none.
func labelScore(issue *types.IssueSnapshot, prefs *preferences.Bundle) float64 {
	if len(issue.Labels) == 0 {
		return neutralScore
	}
	var sum float64
	for _, label := range issue.Labels {
		sum += prefs.LabelScore(label)
	}
	return sum / float64(len(issue.Labels))
}

// Ranker orders analyzed issues by personalized priority for one user.
type Ranker struct {
	prefs      PreferenceSource
	engagement EngagementSource
}

// NewRanker creates a ranker. Both sources are required.
func NewRanker(prefs PreferenceSource, engagement EngagementSource) (*Ranker, error) {
	if prefs == nil {
		return nil, fmt.Errorf("preference source is required")
	}
	if engagement == nil {
		return nil, fmt.Errorf("engagement source is required")
	}
	return &Ranker{prefs: prefs, engagement: engagement}, nil
}

// Rank fills Personalized on each item and returns them sorted by
// personalized priority descending, ties keeping input order. Items
// without an analysis keep their zero score at the bottom. A preference
// load failure degrades every item to its base priority.
func (r *Ranker) Rank(ctx context.Context, userID string, items []*types.RankedIssue) []*types.RankedIssue {
	bundle, err := r.prefs.Load(ctx, userID)
	if err != nil {
		log.Printf("[RANKING] Failed to load preferences for %s, ranking by base priority: %v", userID, err)
		bundle = nil
	}

	for _, item := range items {
		if item == nil || item.Issue == nil || item.Analysis == nil {
			continue
		}
		var engagementScore float64
		if bundle != nil {
			engagementScore = r.engagement.Score(ctx, userID, item.Issue.ID)
		}
		item.Personalized = Personalize(item.Issue, item.Analysis.Priority, bundle, engagementScore)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Personalized > items[j].Personalized
	})
	return items
}
