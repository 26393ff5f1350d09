package vector

import (
	"context"
	"hash/fnv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuepilot/issuepilot/internal/types"
)

// bagEmbedder is a deterministic test embedder: a hashed bag-of-words
// projection. Texts sharing words land near each other, which gives
// real cosine geometry without a network call.
type bagEmbedder struct {
	calls atomic.Int64
}

func (e *bagEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(int64(len(texts)))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 64)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(word))
			vec[h.Sum32()%64]++
		}
		out[i] = vec
	}
	return out, nil
}

func newTestIndex(t *testing.T) (*SQLiteIndex, *bagEmbedder) {
	t.Helper()
	embedder := &bagEmbedder{}
	index, err := NewSQLiteIndex(":memory:", embedder)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index, embedder
}

func TestAddAndSearch(t *testing.T) {
	index, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, "ENG-1", "oauth2 implementation for login", map[string]string{"state": "In Progress"}))
	require.NoError(t, index.Add(ctx, "ENG-2", "oauth2 auth flow for login", map[string]string{"state": "Backlog"}))
	require.NoError(t, index.Add(ctx, "ENG-3", "dark mode color palette", map[string]string{"state": "Todo"}))

	results, err := index.Search(ctx, "oauth2 implementation for login", 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Exact text comes back at distance ~0, the oauth sibling next
	assert.Equal(t, "ENG-1", results[0].ID)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
	assert.Equal(t, "ENG-2", results[1].ID)
	assert.Less(t, results[1].Distance, results[2].Distance)

	// Distances stay in [0, 1] so similarity = 1 - distance stays in [0, 1]
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Distance, 0.0)
		assert.LessOrEqual(t, r.Distance, 1.0)
		assert.InDelta(t, 1.0-r.Distance, r.Similarity(), 1e-12)
	}
}

func TestSearchFilter(t *testing.T) {
	index, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, "ENG-1", "flaky checkout test", map[string]string{"team": "Payments"}))
	require.NoError(t, index.Add(ctx, "ENG-2", "flaky signup test", map[string]string{"team": "Growth"}))

	results, err := index.Search(ctx, "flaky test", 10, map[string]string{"team": "Growth"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ENG-2", results[0].ID)
}

func TestSearchRespectsK(t *testing.T) {
	index, _ := newTestIndex(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, index.Add(ctx, id, "document "+id, nil))
	}

	results, err := index.Search(ctx, "document a", 2, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestContentHashSkipsReembedding(t *testing.T) {
	index, embedder := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, "ENG-1", "stable text", map[string]string{"state": "Todo"}))
	after := embedder.calls.Load()

	// Same text, new metadata: no embedding call
	require.NoError(t, index.Add(ctx, "ENG-1", "stable text", map[string]string{"state": "Done"}))
	assert.Equal(t, after, embedder.calls.Load())

	results, err := index.Search(ctx, "stable text", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Done", results[0].Metadata["state"])

	// Changed text re-embeds
	require.NoError(t, index.Add(ctx, "ENG-1", "different text entirely", nil))
	assert.Greater(t, embedder.calls.Load(), after)
}

func TestGetEmbeddingAndDelete(t *testing.T) {
	index, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, "ENG-1", "some text", nil))

	vec, err := index.GetEmbedding(ctx, "ENG-1")
	require.NoError(t, err)
	require.NotNil(t, vec)
	assert.Len(t, vec, 64)

	// Stored vectors are unit length
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)

	require.NoError(t, index.Delete(ctx, "ENG-1"))
	vec, err = index.GetEmbedding(ctx, "ENG-1")
	require.NoError(t, err)
	assert.Nil(t, vec)

	// Deleting an absent id is a no-op
	require.NoError(t, index.Delete(ctx, "ENG-404"))
}

func TestEncodeDecodeVector(t *testing.T) {
	v := []float32{0.25, -1.5, 3.75, 0}
	assert.Equal(t, v, decodeVector(encodeVector(v)))
}

func TestBackfill(t *testing.T) {
	index, _ := newTestIndex(t)
	indexer, err := NewIndexer(index)
	require.NoError(t, err)

	now := time.Now().UTC()
	var issues []*types.IssueSnapshot
	for _, id := range []string{"ENG-1", "ENG-2", "ENG-3"} {
		issues = append(issues, &types.IssueSnapshot{
			ID: id, Title: "Issue " + id, State: "Todo", Priority: 2,
			CreatedAt: now, FetchedAt: now,
		})
	}

	indexed, failed, err := indexer.Backfill(context.Background(), issues, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, indexed)
	assert.Zero(t, failed)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
