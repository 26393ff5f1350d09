package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuepilot/issuepilot/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testIssue(id string) *types.IssueSnapshot {
	now := time.Now().UTC()
	updated := now.Add(-time.Hour)
	return &types.IssueSnapshot{
		ID:          id,
		UUID:        "uuid-" + id,
		Title:       "Issue " + id,
		Description: "description for " + id,
		State:       "In Progress",
		Priority:    2,
		Team:        "Platform",
		Assignee:    "sam",
		Labels:      []string{"backend", "P2"},
		CreatedAt:   now.Add(-48 * time.Hour),
		UpdatedAt:   &updated,
		FetchedAt:   now,
	}
}

func TestIssueRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue := testIssue("ENG-1")
	require.NoError(t, store.SaveIssue(ctx, issue))

	got, err := store.GetIssue(ctx, "ENG-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, issue.Title, got.Title)
	assert.Equal(t, issue.Labels, got.Labels)
	assert.Equal(t, issue.Team, got.Team)
	require.NotNil(t, got.UpdatedAt)

	// Absent issue resolves to nil, not an error
	missing, err := store.GetIssue(ctx, "ENG-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveIssueUpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue := testIssue("ENG-1")
	require.NoError(t, store.SaveIssue(ctx, issue))

	newer := testIssue("ENG-1")
	newer.Title = "Issue ENG-1 (renamed)"
	newer.State = "Done"
	require.NoError(t, store.SaveIssue(ctx, newer))

	got, err := store.GetIssue(ctx, "ENG-1")
	require.NoError(t, err)
	assert.Equal(t, "Issue ENG-1 (renamed)", got.Title)
	assert.Equal(t, "Done", got.State)

	issues, err := store.ListIssues(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, issues, 1, "upsert must not create a second row")
}

func TestSaveIssueRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bad := testIssue("ENG-1")
	bad.Title = ""
	assert.Error(t, store.SaveIssue(ctx, bad))

	bad = testIssue("ENG-1")
	bad.Priority = 7
	assert.Error(t, store.SaveIssue(ctx, bad))
}

func TestListIssuesWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fresh := testIssue("ENG-1")
	require.NoError(t, store.SaveIssue(ctx, fresh))

	stale := testIssue("ENG-2")
	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	stale.UpdatedAt = &old
	require.NoError(t, store.SaveIssue(ctx, stale))

	recent, err := store.ListIssues(ctx, 30)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "ENG-1", recent[0].ID)

	all, err := store.ListIssues(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFeedbackAppendAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	events := []*types.FeedbackEvent{
		{UserID: "u1", Kind: types.FeedbackPositive, Metadata: map[string]string{"issue_id": "ENG-1"}},
		{UserID: "u1", Kind: types.FeedbackNegative, Metadata: map[string]string{"issue_id": "ENG-2"}},
		{UserID: "u1", Kind: types.FeedbackIssueAction},
	}
	for _, e := range events {
		require.NoError(t, store.AppendFeedback(ctx, e))
		assert.NotZero(t, e.ID, "append should backfill the row id")
	}

	all, err := store.RecentFeedback(ctx, 7, 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	positive := types.FeedbackPositive
	pos, err := store.RecentFeedback(ctx, 7, 0, &positive)
	require.NoError(t, err)
	require.Len(t, pos, 1)
	assert.Equal(t, "ENG-1", pos[0].IssueID())

	limited, err := store.RecentFeedback(ctx, 7, 2, nil)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	// Invalid kind is rejected before any write
	bad := &types.FeedbackEvent{UserID: "u1", Kind: "meh"}
	assert.Error(t, store.AppendFeedback(ctx, bad))
}

func TestUpsertInteraction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertInteraction(ctx, "u1", "ENG-1", types.InteractionView, "opened from briefing")
	require.NoError(t, err)
	assert.Equal(t, 1, first.InteractionCount)
	assert.Equal(t, 0.5, first.Score)

	second, err := store.UpsertInteraction(ctx, "u1", "ENG-1", types.InteractionQuery, "asked about status")
	require.NoError(t, err)
	assert.Equal(t, 2, second.InteractionCount, "same pair increments, never duplicates")
	assert.Equal(t, types.InteractionQuery, second.Kind)

	records, err := store.TopEngagement(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Unknown kind is an invalid-argument error
	_, err = store.UpsertInteraction(ctx, "u1", "ENG-1", "hover", "")
	assert.Error(t, err)

	// Context is truncated to the storage limit
	long := strings.Repeat("x", 500)
	rec, err := store.UpsertInteraction(ctx, "u1", "ENG-2", types.InteractionMention, long)
	require.NoError(t, err)
	assert.Len(t, rec.Context, types.MaxContextLength)
}

func TestSetEngagementScore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertInteraction(ctx, "u1", "ENG-1", types.InteractionView, "")
	require.NoError(t, err)

	require.NoError(t, store.SetEngagementScore(ctx, "u1", "ENG-1", 0.83))
	rec, err := store.GetEngagement(ctx, "u1", "ENG-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.83, rec.Score, 1e-9)

	assert.Error(t, store.SetEngagementScore(ctx, "u1", "ENG-1", 1.5))
	assert.Error(t, store.SetEngagementScore(ctx, "u1", "ENG-1", -0.1))
	assert.Error(t, store.SetEngagementScore(ctx, "u1", "ENG-404", 0.5))

	// Absence reads as nil, not error
	missing, err := store.GetEngagement(ctx, "u1", "ENG-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTopEngagementOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, pair := range []struct {
		issue string
		score float64
	}{{"ENG-1", 0.3}, {"ENG-2", 0.9}, {"ENG-3", 0.6}} {
		_, err := store.UpsertInteraction(ctx, "u1", pair.issue, types.InteractionView, "")
		require.NoError(t, err)
		require.NoError(t, store.SetEngagementScore(ctx, "u1", pair.issue, pair.score))
	}

	top, err := store.TopEngagement(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "ENG-2", top[0].IssueID)
	assert.Equal(t, "ENG-3", top[1].IssueID)
}

func TestPreferenceUpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &types.PreferenceRecord{
		UserID: "u1", Type: types.PreferenceTopic, Key: "backend",
		Score: 0.6, Confidence: 0.3, FeedbackCount: 6,
	}
	require.NoError(t, store.UpsertPreference(ctx, rec))

	rec.Score = 0.75
	rec.FeedbackCount = 12
	require.NoError(t, store.UpsertPreference(ctx, rec))

	got, err := store.GetPreference(ctx, "u1", types.PreferenceTopic, "backend")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 0.75, got.Score, 1e-9)
	assert.Equal(t, 12, got.FeedbackCount)

	all, err := store.AllPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must replace, not add")
}

func TestPreferenceValidationAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bad := &types.PreferenceRecord{UserID: "u1", Type: types.PreferenceTopic, Key: "backend", Score: 1.4, Confidence: 0.5}
	assert.Error(t, store.UpsertPreference(ctx, bad))

	for _, r := range []*types.PreferenceRecord{
		{UserID: "u1", Type: types.PreferenceTopic, Key: "backend", Score: 0.7, Confidence: 0.4},
		{UserID: "u1", Type: types.PreferenceTopic, Key: "frontend", Score: 0.3, Confidence: 0.4},
		{UserID: "u1", Type: types.PreferenceTeam, Key: "Platform", Score: 0.8, Confidence: 0.4},
	} {
		require.NoError(t, store.UpsertPreference(ctx, r))
	}

	topic := types.PreferenceTopic
	count, err := store.DeletePreferences(ctx, "u1", &topic, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	remaining, err := store.AllPreferences(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, types.PreferenceTeam, remaining[0].Type)

	count, err = store.DeletePreferences(ctx, "u1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
