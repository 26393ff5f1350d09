// Package vector provides the embedding index consumed by duplicate
// detection and semantic search: add/search/delete over issue text.
//
// Distance semantics: vectors are unit-normalized on insert and cosine
// similarity is clamped to [0, 1], so every distance this package emits
// lies in [0, 1] with 0 meaning identical. Consumers convert with the
// single canonical formula similarity = 1 - distance.
package vector

import (
	"context"
	"fmt"
	"math"
)

// SearchResult is one ranked neighbor from an index query.
type SearchResult struct {
	ID       string            `json:"id"`
	Distance float64           `json:"distance"` // cosine distance in [0, 1]; 0 = identical
	Metadata map[string]string `json:"metadata,omitempty"`
	Document string            `json:"document"` // the indexed text
}

// Similarity converts the result's distance to a similarity in [0, 1].
func (r *SearchResult) Similarity() float64 {
	return 1.0 - r.Distance
}

// Index is the nearest-neighbor capability over issue text.
type Index interface {
	// Add embeds text and stores (or replaces) the vector for id.
	Add(ctx context.Context, id, text string, metadata map[string]string) error

	// Search returns up to k neighbors of the query text, nearest
	// first. A non-nil filter keeps only results whose metadata
	// contains every given key/value pair.
	Search(ctx context.Context, text string, k int, filter map[string]string) ([]SearchResult, error)

	// GetEmbedding returns the stored vector for id, or nil if absent.
	GetEmbedding(ctx context.Context, id string) ([]float32, error)

	// Delete removes id from the index. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}

// Embedder turns text into vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// normalize scales a vector to unit length in place. A zero vector is
// left untouched (its similarity to anything is then 0).
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// cosineDistance computes 1 - dot(a, b) for unit vectors, clamping the
// similarity into [0, 1] first so distances stay in [0, 1].
func cosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if dot < 0 {
		dot = 0
	}
	if dot > 1 {
		dot = 1
	}
	return 1.0 - dot, nil
}
