package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/crawlit/ai"
	"github.com/poiesic/crawlit/core"
	"github.com/poiesic/crawlit/storage"
)

// DefaultMaxHits is the number of chunks retrieved when the caller does not
// specify a limit.
const DefaultMaxHits = 5

// emptyContextMessage is returned by RetrieveContext when nothing matches.
const emptyContextMessage = "No relevant company information found."

// Searcher provides semantic retrieval over a document store.
type Searcher struct {
	store    storage.DocumentStore
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithEmbedder replaces the provider's embedder, e.g. to share a caching
// embedder with the crawler.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Searcher) error {
		if embedder != nil {
			s.embedder = embedder
		}
		return nil
	}
}

// NewSearcher creates a new searcher over the given store.
func NewSearcher(store storage.DocumentStore, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: provider.Embedder(),
		logger:   slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Retrieve embeds the query and returns the closest stored chunks,
// nearest first. A non-positive maxHits falls back to DefaultMaxHits.
func (s *Searcher) Retrieve(ctx context.Context, query string, maxHits int) ([]*core.Chunk, error) {
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.store.Query(ctx, embedding, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.ID)
	}

	chunks, err := s.store.Get(ctx, ids...)
	if err != nil {
		s.logger.Error("error loading chunks", "err", err)
		return nil, err
	}

	s.logger.Debug("retrieved chunks", "query", query, "hits", len(chunks))
	return chunks, nil
}

// RetrieveContext retrieves the closest chunks and formats them as a single
// markdown context block, sections separated by horizontal rules. Returns a
// fixed message when nothing matches.
func (s *Searcher) RetrieveContext(ctx context.Context, query string, maxHits int) (string, error) {
	chunks, err := s.Retrieve(ctx, query, maxHits)
	if err != nil {
		return "", err
	}

	if len(chunks) == 0 {
		return emptyContextMessage, nil
	}

	sections := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		crawledAt := chunk.Metadata["crawled_at"]
		if crawledAt == "" {
			crawledAt = "N/A"
		}
		sections = append(sections, fmt.Sprintf("# %s\n\n%s\n\nSource: %s\nLast Updated: %s",
			chunk.Title, chunk.Content, chunk.URL, crawledAt))
	}

	return strings.Join(sections, "\n\n---\n\n"), nil
}
