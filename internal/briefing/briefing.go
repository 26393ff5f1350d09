// Package briefing assembles the daily briefing: stored issues are
// analyzed, personalized for one user, and annotated with duplicate and
// related findings. Every collaborator failure degrades to a briefing
// with that feature omitted.
package briefing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/issuepilot/issuepilot/internal/analyzer"
	"github.com/issuepilot/issuepilot/internal/dedup"
	"github.com/issuepilot/issuepilot/internal/ranking"
	"github.com/issuepilot/issuepilot/internal/storage"
	"github.com/issuepilot/issuepilot/internal/types"
)

// DefaultWindowDays bounds how far back the briefing reaches for issues.
const DefaultWindowDays = 30

// Summarizer renders a briefing into short prose. Implementations talk
// to an LLM, so the briefing treats them as optional and best-effort.
type Summarizer interface {
	Summarize(ctx context.Context, briefing *Briefing) (string, error)
}

// Briefing is one generated briefing for one user.
type Briefing struct {
	UserID      string               `json:"user_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Items       []*types.RankedIssue `json:"items"`

	// Duplicates and Related are auxiliary annotations. They never feed
	// back into the ranking formula.
	Duplicates []types.DuplicatePair `json:"duplicates,omitempty"`
	Related    []types.DuplicatePair `json:"related,omitempty"`

	// Summary is LLM prose, empty when no summarizer is configured or
	// the call failed.
	Summary string `json:"summary,omitempty"`
}

// Builder wires the pipeline together. Detector and summarizer are
// optional; without them the briefing simply lacks those sections.
type Builder struct {
	store      storage.Storage
	ranker     *ranking.Ranker
	detector   dedup.Detector
	summarizer Summarizer

	relatedThreshold float64

	now func() time.Time
}

// NewBuilder creates a briefing builder. Store and ranker are required.
func NewBuilder(store storage.Storage, ranker *ranking.Ranker, detector dedup.Detector, summarizer Summarizer) (*Builder, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if ranker == nil {
		return nil, fmt.Errorf("ranker is required")
	}
	return &Builder{
		store:            store,
		ranker:           ranker,
		detector:         detector,
		summarizer:       summarizer,
		relatedThreshold: dedup.DefaultRelatedThreshold,
		now:              time.Now,
	}, nil
}

// Build generates the briefing for one user over the given issue window.
// windowDays <= 0 uses DefaultWindowDays; limit <= 0 keeps every issue.
func (b *Builder) Build(ctx context.Context, userID string, windowDays, limit int) (*Briefing, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	issues, err := b.store.ListIssues(ctx, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	now := b.now().UTC()
	items := make([]*types.RankedIssue, 0, len(issues))
	for _, issue := range issues {
		items = append(items, &types.RankedIssue{
			Issue:    issue,
			Analysis: analyzer.Analyze(issue, now),
		})
	}

	items = b.ranker.Rank(ctx, userID, items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := &Briefing{
		UserID:      userID,
		GeneratedAt: now,
		Items:       items,
	}

	b.annotateDuplicates(ctx, out, issues)
	b.summarize(ctx, out)
	return out, nil
}

// annotateDuplicates attaches duplicate and related pairs. Pairs strong
// enough to count as duplicates are kept out of the related list.
func (b *Builder) annotateDuplicates(ctx context.Context, out *Briefing, issues []*types.IssueSnapshot) {
	if b.detector == nil {
		return
	}

	duplicates, err := b.detector.Scan(ctx, issues, dedup.DefaultDuplicateThreshold)
	if err != nil {
		log.Printf("[BRIEFING] Duplicate scan failed, omitting annotations: %v", err)
		return
	}
	out.Duplicates = duplicates

	all, err := b.detector.Scan(ctx, issues, b.relatedThreshold)
	if err != nil {
		log.Printf("[BRIEFING] Related scan failed, omitting related annotations: %v", err)
		return
	}

	isDuplicate := make(map[string]bool, len(duplicates))
	for _, p := range duplicates {
		isDuplicate[p.IssueA+"\x00"+p.IssueB] = true
	}
	for _, p := range all {
		if !isDuplicate[p.IssueA+"\x00"+p.IssueB] {
			out.Related = append(out.Related, p)
		}
	}
}

func (b *Builder) summarize(ctx context.Context, out *Briefing) {
	if b.summarizer == nil || len(out.Items) == 0 {
		return
	}
	summary, err := b.summarizer.Summarize(ctx, out)
	if err != nil {
		log.Printf("[BRIEFING] Summary generation failed, omitting: %v", err)
		return
	}
	out.Summary = summary
}
