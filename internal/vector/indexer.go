package vector

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/issuepilot/issuepilot/internal/types"
)

// Indexer keeps the vector index in sync with the issue snapshot cache.
type Indexer struct {
	index Index
}

// NewIndexer creates a new indexer over the given index
func NewIndexer(index Index) (*Indexer, error) {
	if index == nil {
		return nil, fmt.Errorf("index cannot be nil")
	}
	return &Indexer{index: index}, nil
}

// IndexIssue adds or refreshes a single issue in the index.
func (ix *Indexer) IndexIssue(ctx context.Context, issue *types.IssueSnapshot) error {
	if issue == nil {
		return fmt.Errorf("issue cannot be nil")
	}
	return ix.index.Add(ctx, issue.ID, issue.SearchText(), IssueMetadata(issue))
}

// Backfill (re)indexes all given issues with a bounded number of
// concurrent embedding calls. Individual failures are logged and
// counted, not fatal: a briefing with a partially fresh index beats no
// briefing at all.
func (ix *Indexer) Backfill(ctx context.Context, issues []*types.IssueSnapshot, concurrency int) (indexed, failed int, err error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	type outcome struct{ ok bool }
	outcomes := make([]outcome, len(issues))

	for i, issue := range issues {
		i, issue := i, issue
		g.Go(func() error {
			if err := ix.IndexIssue(ctx, issue); err != nil {
				log.Printf("[VECTOR] Failed to index %s: %v", issue.ID, err)
				return nil
			}
			outcomes[i].ok = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	for _, o := range outcomes {
		if o.ok {
			indexed++
		} else {
			failed++
		}
	}
	return indexed, failed, nil
}

// IssueMetadata is the metadata snapshot stored beside each vector.
// It carries just enough to filter searches without a storage lookup.
func IssueMetadata(issue *types.IssueSnapshot) map[string]string {
	meta := map[string]string{
		"state": issue.State,
	}
	if issue.Team != "" {
		meta["team"] = issue.Team
	}
	if issue.Assignee != "" {
		meta["assignee"] = issue.Assignee
	}
	return meta
}
