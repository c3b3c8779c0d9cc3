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


// Package flatfile implements the fallback document store used when the
// primary BadgerDB store cannot be initialized.
//
// Layout on disk:
//
//	<dir>/documents/<hash>.txt  raw chunk text, one file per chunk
//	<dir>/index.json            id -> {doc_path, embedding, metadata, ...}
//	<dir>/metadata.json         store creation time
//
// The index is deserialized in full on every operation; that keeps the
// implementation dependency-free but limits it to small corpora.
//
// Query does not compute similarity: it returns an arbitrary prefix of
// stored ids with a placeholder distance. This mirrors the primary store's
// interface, not its ranking behavior, and callers that need real ranking
// must use the primary store.
package flatfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/crawlit/core"
	"github.com/poiesic/crawlit/storage"
)

const (
	indexFile    = "index.json"
	metadataFile = "metadata.json"
	documentsDir = "documents"

	// placeholderDistance is reported for every match since no similarity
	// is computed.
	placeholderDistance float32 = 1.0
)

// indexEntry holds everything about a chunk except its content, which
// lives in the file at DocPath.
type indexEntry struct {
	DocPath     string            `json:"doc_path"`
	URL         string            `json:"url"`
	ChunkNumber int               `json:"chunk_number"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary"`
	Metadata    map[string]string `json:"metadata"`
	Embedding   []float32         `json:"embedding"`
	InsertedAt  time.Time         `json:"inserted_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type storeMetadata struct {
	CreatedAt time.Time `json:"created_at"`
}

// Store implements storage.DocumentStore on plain files.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

var _ storage.DocumentStore = (*Store)(nil)

// Open opens (or creates) a flat-file document store rooted at dir.
//
// Returns storage.DocumentStore interface to keep the backend substitutable
// with the primary store.
func Open(dir string) (storage.DocumentStore, error) {
	s := &Store{
		dir:    dir,
		logger: slog.Default().With("component", "flatfile-store"),
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// initialize creates the directory layout and seed files if missing.
func (s *Store) initialize() error {
	if err := os.MkdirAll(filepath.Join(s.dir, documentsDir), 0755); err != nil {
		return err
	}

	indexPath := filepath.Join(s.dir, indexFile)
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := s.saveIndex(map[string]*indexEntry{}); err != nil {
			return err
		}
	}

	metaPath := filepath.Join(s.dir, metadataFile)
	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		data, err := json.Marshal(storeMetadata{CreatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		if err := os.WriteFile(metaPath, data, 0644); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) loadIndex() (map[string]*indexEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*indexEntry{}, nil
		}
		return nil, err
	}

	index := map[string]*indexEntry{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return index, nil
}

func (s *Store) saveIndex(index map[string]*indexEntry) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return os.WriteFile(filepath.Join(s.dir, indexFile), data, 0644)
}

// docPath returns the content file path for a chunk id. Ids embed full URLs,
// so the file name is a content hash of the id rather than the id itself.
func (s *Store) docPath(id string) string {
	return filepath.Join(s.dir, documentsDir, fmt.Sprintf("%016x.txt", uint64(core.IDFromContent(id))))
}

// Add upserts chunks keyed by their external id.
func (s *Store) Add(ctx context.Context, chunks ...*core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}

		id := chunk.ID()
		path := s.docPath(id)
		if err := os.WriteFile(path, []byte(chunk.Content), 0644); err != nil {
			return err
		}

		insertedAt := now
		if old, ok := index[id]; ok {
			insertedAt = old.InsertedAt
		} else if !chunk.InsertedAt.IsZero() {
			insertedAt = chunk.InsertedAt
		}

		index[id] = &indexEntry{
			DocPath:     path,
			URL:         chunk.URL,
			ChunkNumber: chunk.ChunkNumber,
			Title:       chunk.Title,
			Summary:     chunk.Summary,
			Metadata:    chunk.Metadata,
			Embedding:   chunk.Embedding,
			InsertedAt:  insertedAt,
			UpdatedAt:   now,
		}
	}

	return s.saveIndex(index)
}

// Get retrieves chunks by id, in the order requested.
// Unknown ids are silently skipped.
func (s *Store) Get(ctx context.Context, ids ...string) ([]*core.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, 0, len(ids))
	for _, id := range ids {
		entry, ok := index[id]
		if !ok {
			continue
		}

		content, err := os.ReadFile(entry.DocPath)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, &core.Chunk{
			URL:         entry.URL,
			ChunkNumber: entry.ChunkNumber,
			Title:       entry.Title,
			Summary:     entry.Summary,
			Content:     string(content),
			Metadata:    entry.Metadata,
			Embedding:   entry.Embedding,
			InsertedAt:  entry.InsertedAt,
			UpdatedAt:   entry.UpdatedAt,
		})
	}

	return chunks, nil
}

// ListIDs returns all known chunk ids, sorted for determinism.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Query returns an arbitrary prefix of stored ids with placeholder distances.
// No similarity is computed against the query embedding; retrieval quality
// through this backend is strictly best-effort.
func (s *Store) Query(ctx context.Context, embedding []float32, limit int) ([]*storage.Match, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) > limit {
		ids = ids[:limit]
	}

	matches := make([]*storage.Match, 0, len(ids))
	for _, id := range ids {
		entry := index[id]
		content, err := os.ReadFile(entry.DocPath)
		if err != nil {
			return nil, err
		}
		matches = append(matches, &storage.Match{
			ID:       id,
			Document: string(content),
			Metadata: entry.Metadata,
			Distance: placeholderDistance,
		})
	}

	return matches, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return 0, err
	}
	return len(index), nil
}

// Reset removes the whole store directory and re-creates an empty layout.
// Idempotent.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return s.initialize()
}

// Close is a no-op; the store holds no open handles between operations.
func (s *Store) Close() error {
	return nil
}
