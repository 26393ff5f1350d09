package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuepilot/issuepilot/internal/storage"
	"github.com/issuepilot/issuepilot/internal/types"
)

func TestFromWire(t *testing.T) {
	now := time.Now().UTC()
	updated := now.Add(-2 * time.Hour)

	wire := &WireIssue{
		ID:          "ENG-142",
		UUID:        "7d4a2e90-0000-0000-0000-000000000001",
		Title:       "Fix login redirect loop",
		Description: "Users bounce between /login and /home",
		State:       "In Progress",
		Priority:    1,
		Team:        "Platform",
		Assignee:    "alice",
		Labels:      []string{"bug", "auth"},
		CreatedAt:   now.Add(-72 * time.Hour),
		UpdatedAt:   &updated,
		Comments:    []WireComment{{Author: "bob", Body: "repro attached", CreatedAt: now}},
		Relations:   []WireRelation{{Type: "blocks", IssueID: "ENG-150"}},
	}

	snapshot, err := FromWire(wire, now)
	require.NoError(t, err)
	assert.Equal(t, "ENG-142", snapshot.ID)
	assert.Equal(t, wire.UUID, snapshot.UUID)
	assert.Equal(t, "Fix login redirect loop", snapshot.Title)
	assert.Equal(t, []string{"bug", "auth"}, snapshot.Labels)
	assert.Equal(t, now, snapshot.FetchedAt)
	require.Len(t, snapshot.Comments, 1)
	assert.Equal(t, "bob", snapshot.Comments[0].Author)
	require.Len(t, snapshot.Relations, 1)
	assert.Equal(t, "blocks", snapshot.Relations[0].Type)
}

func TestFromWireGeneratesUUID(t *testing.T) {
	wire := &WireIssue{ID: "ENG-1", Title: "No uuid upstream", State: "Todo", Priority: 2, CreatedAt: time.Now()}
	snapshot, err := FromWire(wire, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.UUID)
}

func TestFromWireRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		wire *WireIssue
	}{
		{"nil payload", nil},
		{"missing id", &WireIssue{Title: "x", State: "Todo", Priority: 2}},
		{"missing title", &WireIssue{ID: "ENG-1", State: "Todo", Priority: 2}},
		{"priority out of range", &WireIssue{ID: "ENG-1", Title: "x", State: "Todo", Priority: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromWire(tt.wire, time.Now())
			assert.Error(t, err)
		})
	}
}

type fakeClient struct {
	issues map[string]*types.IssueSnapshot
	calls  int
	err    error
}

func (f *fakeClient) GetIssue(_ context.Context, id string) (*types.IssueSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.issues[id], nil
}

func (f *fakeClient) ListIssues(context.Context, int) ([]*types.IssueSnapshot, error) {
	return nil, nil
}

func testStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewStorage(context.Background(), &storage.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func snapshotAt(id string, fetchedAt time.Time) *types.IssueSnapshot {
	return &types.IssueSnapshot{
		ID: id, Title: "Issue " + id, State: "Todo", Priority: 2,
		CreatedAt: fetchedAt, FetchedAt: fetchedAt,
	}
}

func TestCacheHitShortCircuits(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	require.NoError(t, store.SaveIssue(ctx, snapshotAt("ENG-1", time.Now().UTC())))

	client := &fakeClient{}
	cache, err := NewCache(store, client)
	require.NoError(t, err)

	got, err := cache.GetLatest(ctx, "ENG-1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, client.calls)
}

func TestCacheStaleRefetchesAndSaves(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	require.NoError(t, store.SaveIssue(ctx, snapshotAt("ENG-1", time.Now().UTC().Add(-time.Hour))))

	fresh := snapshotAt("ENG-1", time.Now().UTC())
	fresh.Title = "Issue ENG-1 refreshed"
	client := &fakeClient{issues: map[string]*types.IssueSnapshot{"ENG-1": fresh}}

	cache, err := NewCache(store, client)
	require.NoError(t, err)

	got, err := cache.GetLatest(ctx, "ENG-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "Issue ENG-1 refreshed", got.Title)
	assert.Equal(t, 1, client.calls)

	// The refetch replaced the stored snapshot
	stored, err := store.GetIssue(ctx, "ENG-1")
	require.NoError(t, err)
	assert.Equal(t, "Issue ENG-1 refreshed", stored.Title)
}

func TestCacheServesStaleOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	require.NoError(t, store.SaveIssue(ctx, snapshotAt("ENG-1", time.Now().UTC().Add(-time.Hour))))

	cache, err := NewCache(store, &fakeClient{err: fmt.Errorf("tracker down")})
	require.NoError(t, err)

	got, err := cache.GetLatest(ctx, "ENG-1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCacheUnknownIssue(t *testing.T) {
	cache, err := NewCache(testStore(t), &fakeClient{})
	require.NoError(t, err)

	got, err := cache.GetLatest(context.Background(), "ENG-404", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, got)
}
