package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/crawlit/ai"
	"github.com/poiesic/crawlit/ai/mock"
	"github.com/poiesic/crawlit/core"
	"github.com/poiesic/crawlit/storage"
	badgerstore "github.com/poiesic/crawlit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T) storage.DocumentStore {
	t.Helper()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	crawledAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	chunks := []*core.Chunk{
		{
			URL:         "https://example.com/mission",
			ChunkNumber: 0,
			Title:       "Company Mission",
			Summary:     "States the mission.",
			Content:     "Our mission is to make data boring again.",
			Metadata:    core.NewChunkMetadata("https://example.com/mission", 40, crawledAt),
			Embedding:   []float32{1, 0, 0},
		},
		{
			URL:         "https://example.com/team",
			ChunkNumber: 0,
			Title:       "The Team",
			Summary:     "Lists the team.",
			Content:     "Three people and a dog.",
			Metadata:    core.NewChunkMetadata("https://example.com/team", 23, crawledAt),
			Embedding:   []float32{0, 1, 0},
		},
	}
	require.NoError(t, store.Add(context.Background(), chunks...))

	return store
}

// queryProvider returns a mock provider whose embedder maps every query to
// the given vector.
func queryProvider(vector []float32) ai.Provider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return mock.NewMockProviderWithServices(embedder, mock.NewMockSummarizer())
}

func TestNewSearcher_RequiresStoreAndProvider(t *testing.T) {
	store := newSeededStore(t)

	_, err := NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewSearcher(store, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestRetrieve_RanksNearestFirst(t *testing.T) {
	store := newSeededStore(t)

	searcher, err := NewSearcher(store, queryProvider([]float32{1, 0, 0}))
	require.NoError(t, err)

	chunks, err := searcher.Retrieve(context.Background(), "what is the mission?", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Company Mission", chunks[0].Title)
}

func TestRetrieve_DefaultMaxHits(t *testing.T) {
	store := newSeededStore(t)

	searcher, err := NewSearcher(store, queryProvider([]float32{1, 0, 0}))
	require.NoError(t, err)

	chunks, err := searcher.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestRetrieve_EmbedderErrorPropagates(t *testing.T) {
	store := newSeededStore(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockSummarizer())

	searcher, err := NewSearcher(store, provider)
	require.NoError(t, err)

	_, err = searcher.Retrieve(context.Background(), "query", 5)
	assert.Error(t, err)
}

func TestRetrieveContext_Formatting(t *testing.T) {
	store := newSeededStore(t)

	searcher, err := NewSearcher(store, queryProvider([]float32{1, 0, 0}))
	require.NoError(t, err)

	text, err := searcher.RetrieveContext(context.Background(), "mission", 2)
	require.NoError(t, err)

	assert.Contains(t, text, "# Company Mission")
	assert.Contains(t, text, "Our mission is to make data boring again.")
	assert.Contains(t, text, "Source: https://example.com/mission")
	assert.Contains(t, text, "Last Updated: 2026-08-01T12:00:00Z")
	assert.Contains(t, text, "\n\n---\n\n")
}

func TestRetrieveContext_EmptyStore(t *testing.T) {
	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	searcher, err := NewSearcher(store, queryProvider([]float32{1, 0, 0}))
	require.NoError(t, err)

	text, err := searcher.RetrieveContext(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Equal(t, "No relevant company information found.", text)
}
