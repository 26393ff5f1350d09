// Package dedup detects near-duplicate issue pairs by querying the
// embedding index with each candidate's text and pairing it with its
// closest neighbors above a similarity threshold.
package dedup

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/issuepilot/issuepilot/internal/types"
	"github.com/issuepilot/issuepilot/internal/vector"
)

const (
	// DefaultDuplicateThreshold is the similarity above which a pair is
	// reported as a duplicate.
	DefaultDuplicateThreshold = 0.85

	// DefaultRelatedThreshold is the lower similarity bar used when
	// classifying issues as related rather than duplicate. Callers pass it
	// explicitly; it never substitutes for DefaultDuplicateThreshold.
	DefaultRelatedThreshold = 0.6
)

// IssueLookup resolves an issue id to its latest snapshot.
// A nil snapshot with a nil error means the issue does not exist.
type IssueLookup func(ctx context.Context, issueID string) (*types.IssueSnapshot, error)

// Detector finds near-duplicate issue pairs via the vector index.
type Detector interface {
	// Scan checks every candidate issue against the index and returns
	// deduplicated pairs with similarity >= minSimilarity, sorted by
	// similarity descending. Pass minSimilarity <= 0 to use the
	// configured duplicate threshold.
	Scan(ctx context.Context, candidates []*types.IssueSnapshot, minSimilarity float64) ([]types.DuplicatePair, error)

	// CheckOne checks a single issue by id against the index. The issue
	// itself is never returned as its own duplicate.
	CheckOne(ctx context.Context, issueID string, minSimilarity float64) ([]types.DuplicatePair, error)
}

// VectorDetector implements Detector on top of a vector.Index.
type VectorDetector struct {
	index  vector.Index
	lookup IssueLookup
	cfg    Config
}

var _ Detector = (*VectorDetector)(nil)

// NewVectorDetector creates a detector backed by the given index.
// The lookup is only needed for CheckOne and may be nil for scan-only use.
func NewVectorDetector(index vector.Index, lookup IssueLookup, cfg Config) (*VectorDetector, error) {
	if index == nil {
		return nil, fmt.Errorf("vector index is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector config: %w", err)
	}
	return &VectorDetector{index: index, lookup: lookup, cfg: cfg}, nil
}

// Scan compares each candidate against its nearest index neighbors.
// With ActiveOnly set, candidates in terminal states are skipped before
// any index query is made.
func (d *VectorDetector) Scan(ctx context.Context, candidates []*types.IssueSnapshot, minSimilarity float64) ([]types.DuplicatePair, error) {
	if minSimilarity <= 0 {
		minSimilarity = d.cfg.DuplicateThreshold
	}

	seen := make(map[string]bool)
	var pairs []types.DuplicatePair

	for _, issue := range candidates {
		if issue == nil || issue.ID == "" {
			continue
		}
		if d.cfg.ActiveOnly && types.IsInactive(issue.State) {
			continue
		}

		found, err := d.neighbors(ctx, issue.ID, issue.SearchText(), issue.State, minSimilarity, seen)
		if err != nil {
			if d.cfg.FailOpen {
				log.Printf("[DEDUP] Index search failed for %s, returning partial results: %v", issue.ID, err)
				break
			}
			return nil, fmt.Errorf("failed to search index for %s: %w", issue.ID, err)
		}
		pairs = append(pairs, found...)
	}

	sortPairs(pairs)
	return pairs, nil
}

// CheckOne resolves the issue and compares it against the index.
// An unresolvable issue is an error; index failure degrades to an empty
// result when FailOpen is set.
func (d *VectorDetector) CheckOne(ctx context.Context, issueID string, minSimilarity float64) ([]types.DuplicatePair, error) {
	if issueID == "" {
		return nil, fmt.Errorf("issue id is required")
	}
	if d.lookup == nil {
		return nil, fmt.Errorf("issue lookup is not configured")
	}
	if minSimilarity <= 0 {
		minSimilarity = d.cfg.DuplicateThreshold
	}

	issue, err := d.lookup(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve issue %s: %w", issueID, err)
	}
	if issue == nil {
		return nil, fmt.Errorf("issue %s not found", issueID)
	}

	pairs, err := d.neighbors(ctx, issue.ID, issue.SearchText(), issue.State, minSimilarity, make(map[string]bool))
	if err != nil {
		if d.cfg.FailOpen {
			log.Printf("[DEDUP] Index search failed for %s: %v", issue.ID, err)
			return []types.DuplicatePair{}, nil
		}
		return nil, fmt.Errorf("failed to search index for %s: %w", issue.ID, err)
	}

	sortPairs(pairs)
	return pairs, nil
}

// neighbors queries the index for one issue and emits canonical pairs not
// already in seen. The self-match is always skipped.
func (d *VectorDetector) neighbors(ctx context.Context, id, text, state string, minSimilarity float64, seen map[string]bool) ([]types.DuplicatePair, error) {
	results, err := d.index.Search(ctx, text, d.cfg.MaxNeighbors, nil)
	if err != nil {
		return nil, err
	}

	var pairs []types.DuplicatePair
	for _, r := range results {
		if r.ID == id {
			continue
		}
		sim := r.Similarity()
		if sim < minSimilarity {
			continue
		}

		a, b := id, r.ID
		if a > b {
			a, b = b, a
		}
		key := a + "\x00" + b
		if seen[key] {
			continue
		}
		seen[key] = true

		pairs = append(pairs, types.DuplicatePair{
			IssueA:     a,
			IssueB:     b,
			Similarity: sim,
			Suggestion: mergeSuggestion(id, state, r.ID, r.Metadata["state"]),
		})
	}
	return pairs, nil
}

// mergeSuggestion picks a human-readable action for a duplicate pair.
// The lower-ranked issue merges into the higher-ranked one. On a rank tie
// an inactive side gets a relevance check, otherwise the suggestion stays
// neutral.
func mergeSuggestion(idA, stateA, idB, stateB string) string {
	rankA := types.StateRank(stateA)
	rankB := types.StateRank(stateB)

	switch {
	case rankA < rankB:
		return fmt.Sprintf("merge %s into %s", idA, idB)
	case rankB < rankA:
		return fmt.Sprintf("merge %s into %s", idB, idA)
	case types.IsInactive(stateA) && !types.IsInactive(stateB):
		return fmt.Sprintf("check if %s is still relevant", idA)
	case types.IsInactive(stateB) && !types.IsInactive(stateA):
		return fmt.Sprintf("check if %s is still relevant", idB)
	default:
		return "check if duplicate"
	}
}

func sortPairs(pairs []types.DuplicatePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
}
