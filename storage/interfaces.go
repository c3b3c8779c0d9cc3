package storage

import (
	"context"

	"github.com/poiesic/crawlit/core"
)

// Match is a single similarity-query hit, ranked nearest-first.
type Match struct {
	ID       string
	Document string
	Metadata map[string]string
	// Distance is the cosine distance to the query embedding (0 = identical
	// direction). The flat-file fallback does not compute similarity and
	// reports a fixed placeholder distance instead.
	Distance float32
}

// DocumentStore is the persistence and similarity-query capability over chunks.
// Implementations must be thread-safe and support concurrent access; concurrent
// Add calls with the same id have last-write-wins semantics.
type DocumentStore interface {
	// Add upserts chunks keyed by their external id (url_chunkNumber).
	// Re-adding an existing id overwrites the stored entry.
	Add(ctx context.Context, chunks ...*core.Chunk) error

	// Get retrieves chunks by their ids, in the order requested.
	// Unknown ids are silently skipped (no error for missing entries).
	Get(ctx context.Context, ids ...string) ([]*core.Chunk, error)

	// ListIDs returns all known chunk ids without loading contents.
	ListIDs(ctx context.Context) ([]string, error)

	// Query returns up to limit matches for the given embedding,
	// ordered nearest-first by cosine distance.
	Query(ctx context.Context, embedding []float32, limit int) ([]*Match, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Reset destroys all persisted state. Idempotent.
	Reset(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}
