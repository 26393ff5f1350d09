// Package semsearch exposes similarity search over the embedding index:
// nearest issues to a given issue, and free-text search with metadata
// filters.
package semsearch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/issuepilot/issuepilot/internal/storage"
	"github.com/issuepilot/issuepilot/internal/types"
	"github.com/issuepilot/issuepilot/internal/vector"
)

const (
	// DefaultLimit is the result count when the caller passes k <= 0.
	DefaultLimit = 10

	// DefaultCacheTTL bounds how stale a stored snapshot may be before
	// FindSimilar refetches the source issue from the tracker.
	DefaultCacheTTL = 5 * time.Minute
)

// IssueFetcher fetches an issue from the upstream tracker.
// A nil snapshot with a nil error means the issue does not exist there.
type IssueFetcher interface {
	GetIssue(ctx context.Context, issueID string) (*types.IssueSnapshot, error)
}

// Result is one ranked hit from a similarity query.
type Result struct {
	ID         string            `json:"id"`
	Similarity float64           `json:"similarity"` // in [0, 1], 1 = identical
	Document   string            `json:"document"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Service answers similarity queries against the vector index. The local
// store acts as a short-TTL cache for resolving source issues; the
// fetcher is the fallback when the cache misses or is stale.
type Service struct {
	index    vector.Index
	store    storage.Storage
	fetcher  IssueFetcher
	cacheTTL time.Duration

	now func() time.Time
}

// NewService creates a semantic search service. The fetcher may be nil,
// in which case only locally stored issues can seed FindSimilar.
func NewService(index vector.Index, store storage.Storage, fetcher IssueFetcher, cacheTTL time.Duration) (*Service, error) {
	if index == nil {
		return nil, fmt.Errorf("vector index is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		index:    index,
		store:    store,
		fetcher:  fetcher,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

// FindSimilar returns up to k issues nearest to the given issue, most
// similar first, excluding the issue itself. Results below minSimilarity
// are dropped; pass minSimilarity <= 0 to keep everything. Returns an
// error if the source issue cannot be resolved.
func (s *Service) FindSimilar(ctx context.Context, issueID string, k int, minSimilarity float64) ([]Result, error) {
	if issueID == "" {
		return nil, fmt.Errorf("issue id is required")
	}
	if k <= 0 {
		k = DefaultLimit
	}

	issue, err := s.resolveIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	// Ask for one extra neighbor to absorb the self-match.
	hits, err := s.index.Search(ctx, issue.SearchText(), k+1, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search index for %s: %w", issueID, err)
	}

	results := make([]Result, 0, k)
	for _, hit := range hits {
		if hit.ID == issueID {
			continue
		}
		sim := hit.Similarity()
		if minSimilarity > 0 && sim < minSimilarity {
			continue
		}
		results = append(results, Result{
			ID:         hit.ID,
			Similarity: sim,
			Document:   hit.Document,
			Metadata:   hit.Metadata,
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// SearchByText returns up to k issues nearest to a free-text query, most
// similar first. A non-nil filters map restricts results to issues whose
// index metadata contains every given key/value pair.
func (s *Service) SearchByText(ctx context.Context, query string, k int, minSimilarity float64, filters map[string]string) ([]Result, error) {
	if query == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if k <= 0 {
		k = DefaultLimit
	}

	hits, err := s.index.Search(ctx, query, k, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		sim := hit.Similarity()
		if minSimilarity > 0 && sim < minSimilarity {
			continue
		}
		results = append(results, Result{
			ID:         hit.ID,
			Similarity: sim,
			Document:   hit.Document,
			Metadata:   hit.Metadata,
		})
	}
	return results, nil
}

// resolveIssue returns the source issue, preferring a fresh stored
// snapshot and falling back to the tracker. A tracker hit is saved back
// so the next resolution is a cache hit.
func (s *Service) resolveIssue(ctx context.Context, issueID string) (*types.IssueSnapshot, error) {
	cached, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		log.Printf("[SEMSEARCH] Cache read failed for %s: %v", issueID, err)
	} else if cached != nil && s.now().Sub(cached.FetchedAt) <= s.cacheTTL {
		return cached, nil
	}

	if s.fetcher != nil {
		fetched, err := s.fetcher.GetIssue(ctx, issueID)
		if err != nil {
			log.Printf("[SEMSEARCH] Tracker fetch failed for %s: %v", issueID, err)
		} else if fetched != nil {
			if err := s.store.SaveIssue(ctx, fetched); err != nil {
				log.Printf("[SEMSEARCH] Failed to cache issue %s: %v", issueID, err)
			}
			return fetched, nil
		}
	}

	// A stale snapshot still beats a hard failure when the tracker is
	// unreachable or absent.
	if cached != nil {
		return cached, nil
	}
	return nil, fmt.Errorf("issue %s not found", issueID)
}
