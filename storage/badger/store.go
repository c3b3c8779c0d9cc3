// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/crawlit/core"
	"github.com/poiesic/crawlit/storage"
)

// Store implements storage.DocumentStore on a BadgerDB backend.
// Chunks are keyed by their external id and MUS-encoded as values.
// Similarity queries scan all stored embeddings and rank by cosine distance.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.DocumentStore = (*Store)(nil)

// Open opens (or creates) the primary document store at the given path.
//
// Returns storage.DocumentStore interface (not *Store) to enforce abstraction
// and keep the fallback backend substitutable.
func Open(filePath string) (storage.DocumentStore, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend), nil
}

// newStore is an internal constructor that returns the concrete type.
func newStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "badger-store"),
	}
}

// Add upserts chunks keyed by their external id.
// InsertedAt is preserved for existing entries; UpdatedAt is always refreshed.
func (s *Store) Add(ctx context.Context, chunks ...*core.Chunk) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}

			key := makeChunkKey(chunk.ID())

			old, err := s.readChunk(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				chunk.InsertedAt = old.InsertedAt
			} else if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = now
			}
			chunk.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves chunks by id, in the order requested.
// Unknown ids are silently skipped.
func (s *Store) Get(ctx context.Context, ids ...string) ([]*core.Chunk, error) {
	chunks := make([]*core.Chunk, 0, len(ids))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := s.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk == nil {
				continue
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// ListIDs returns all known chunk ids. Values are not loaded.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			ids = append(ids, chunkIDFromKey(iter.Item().Key()))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Query scans all stored chunks and returns up to limit matches ordered
// nearest-first by cosine distance to the query embedding.
func (s *Store) Query(ctx context.Context, embedding []float32, limit int) ([]*storage.Match, error) {
	if len(embedding) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []*storage.Match

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var chunk *core.Chunk
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil {
				continue
			}

			// Skip chunks without embeddings
			if len(chunk.Embedding) == 0 {
				continue
			}

			matches = append(matches, &storage.Match{
				ID:       chunk.ID(),
				Document: chunk.Content,
				Metadata: chunk.Metadata,
				Distance: cosineDistance(embedding, chunk.Embedding),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by distance ascending (nearest first)
	slices.SortFunc(matches, func(a, b *storage.Match) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reset destroys all persisted chunks. Idempotent.
func (s *Store) Reset(ctx context.Context) error {
	return s.backend.DropAll()
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// readChunk reads and decodes a chunk within a transaction.
// Returns (nil, nil) when the key does not exist.
func (s *Store) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// cosineDistance computes 1 - cosine similarity of two vectors.
// A zero-norm vector is treated as maximally distant.
func cosineDistance(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
