package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/issuepilot/issuepilot/internal/storage"
	"github.com/issuepilot/issuepilot/internal/types"
)

// DefaultMaxAge is how stale a stored snapshot may be before GetLatest
// refetches from the tracker.
const DefaultMaxAge = 5 * time.Minute

// Cache is a staleness-aware issue lookup over the local store. A hit
// within maxAge short-circuits any tracker call; a miss or stale hit
// goes upstream and the result is saved back.
type Cache struct {
	store  storage.Storage
	client Client

	now func() time.Time
}

// NewCache creates a cache. The client may be nil, in which case only
// stored snapshots are served, regardless of age.
func NewCache(store storage.Storage, client Client) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	return &Cache{store: store, client: client, now: time.Now}, nil
}

// GetLatest returns the freshest snapshot available within maxAge,
// falling back to the tracker and then to any stale stored copy.
// Returns (nil, nil) when the issue is unknown everywhere.
func (c *Cache) GetLatest(ctx context.Context, issueID string, maxAge time.Duration) (*types.IssueSnapshot, error) {
	if issueID == "" {
		return nil, fmt.Errorf("issue id is required")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	cached, err := c.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached issue %s: %w", issueID, err)
	}
	if cached != nil && c.now().Sub(cached.FetchedAt) <= maxAge {
		return cached, nil
	}
	if c.client == nil {
		return cached, nil
	}

	fetched, err := c.client.GetIssue(ctx, issueID)
	if err != nil {
		if cached != nil {
			log.Printf("[TRACKER] Fetch failed for %s, serving stale snapshot: %v", issueID, err)
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch issue %s: %w", issueID, err)
	}
	if fetched == nil {
		return cached, nil
	}

	if err := c.store.SaveIssue(ctx, fetched); err != nil {
		log.Printf("[TRACKER] Failed to cache issue %s: %v", issueID, err)
	}
	return fetched, nil
}

// Lookup binds the cache to a max age in the shape the learner and
// duplicate detector expect.
func (c *Cache) Lookup(maxAge time.Duration) func(ctx context.Context, issueID string) (*types.IssueSnapshot, error) {
	return func(ctx context.Context, issueID string) (*types.IssueSnapshot, error) {
		return c.GetLatest(ctx, issueID, maxAge)
	}
}
