package vector

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
    id TEXT PRIMARY KEY,
    document TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    vector BLOB NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteIndex is a brute-force cosine index over vectors stored as
// BLOBs in SQLite. Issue corpora are small enough (thousands, not
// millions) that a linear scan beats carrying an ANN dependency.
//
// Re-adding an id whose text is unchanged is a metadata-only update:
// the content hash short-circuits the embedding call.
type SQLiteIndex struct {
	db       *sql.DB
	embedder Embedder
}

// Compile-time check that SQLiteIndex implements Index
var _ Index = (*SQLiteIndex)(nil)

// NewSQLiteIndex opens (creating if needed) an index database at path.
func NewSQLiteIndex(path string, embedder Embedder) (*SQLiteIndex, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping index database: %w", err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}

	return &SQLiteIndex{db: db, embedder: embedder}, nil
}

// Close closes the index database
func (x *SQLiteIndex) Close() error {
	return x.db.Close()
}

// Add embeds text and stores (or replaces) the vector for id.
func (x *SQLiteIndex) Add(ctx context.Context, id, text string, metadata map[string]string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if text == "" {
		return fmt.Errorf("text is required")
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	hash := contentHash(text)

	// Unchanged text: refresh metadata only, skip the embedding call
	var existingHash string
	err = x.db.QueryRowContext(ctx, `SELECT content_hash FROM embeddings WHERE id = ?`, id).Scan(&existingHash)
	if err == nil && existingHash == hash {
		_, err = x.db.ExecContext(ctx, `
			UPDATE embeddings SET metadata = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
		`, string(meta), id)
		if err != nil {
			return fmt.Errorf("failed to update metadata: %w", err)
		}
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing embedding: %w", err)
	}

	vectors, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("failed to embed %s: %w", id, err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embedder returned %d vectors for one input", len(vectors))
	}
	vec := vectors[0]
	normalize(vec)

	_, err = x.db.ExecContext(ctx, `
		INSERT INTO embeddings (id, document, content_hash, vector, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			content_hash = excluded.content_hash,
			vector = excluded.vector,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`, id, text, hash, encodeVector(vec), string(meta))
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// Search returns up to k neighbors of the query text, nearest first.
func (x *SQLiteIndex) Search(ctx context.Context, text string, k int, filter map[string]string) ([]SearchResult, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if k <= 0 {
		k = 10
	}

	vectors, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	query := vectors[0]
	normalize(query)

	rows, err := x.db.QueryContext(ctx, `SELECT id, document, vector, metadata FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var id, document, meta string
		var blob []byte
		if err := rows.Scan(&id, &document, &blob, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}

		var metadata map[string]string
		if err := json.Unmarshal([]byte(meta), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", id, err)
		}
		if !matchesFilter(metadata, filter) {
			continue
		}

		distance, err := cosineDistance(query, decodeVector(blob))
		if err != nil {
			// Dimension drift after an embedding-model change; skip
			// rather than fail the whole query.
			continue
		}
		results = append(results, SearchResult{
			ID:       id,
			Distance: distance,
			Metadata: metadata,
			Document: document,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetEmbedding returns the stored vector for id, or nil if absent.
func (x *SQLiteIndex) GetEmbedding(ctx context.Context, id string) ([]float32, error) {
	var blob []byte
	err := x.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil // Expected absence, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return decodeVector(blob), nil
}

// Delete removes id from the index. Deleting an absent id is a no-op.
func (x *SQLiteIndex) Delete(ctx context.Context, id string) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM embeddings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (x *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Vectors are stored as little-endian float32 BLOBs.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
