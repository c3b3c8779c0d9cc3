package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/crawlit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunk(url string, number int, embedding []float32) *core.Chunk {
	return &core.Chunk{
		URL:         url,
		ChunkNumber: number,
		Title:       "Test title",
		Summary:     "Test summary",
		Content:     "Some crawled content for " + url,
		Metadata:    core.NewChunkMetadata(url, 42, time.Now().UTC()),
		Embedding:   embedding,
	}
}

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestStore_AddGet_RoundTrip(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	chunk := newTestChunk("https://example.com/about", 0, []float32{0.1, 0.2, 0.3})

	require.NoError(t, store.Add(ctx, chunk))

	got, err := store.Get(ctx, chunk.ID())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, chunk.URL, got[0].URL)
	assert.Equal(t, chunk.ChunkNumber, got[0].ChunkNumber)
	assert.Equal(t, chunk.Content, got[0].Content)
	assert.Equal(t, chunk.Embedding, got[0].Embedding)
	assert.Equal(t, chunk.Metadata, got[0].Metadata)
	assert.False(t, got[0].InsertedAt.IsZero())
}

func TestStore_Get_UnknownIDsSkipped(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newTestChunk("https://example.com/a", 0, []float32{1, 0})))

	got, err := store.Get(ctx, "https://example.com/a_0", "https://example.com/missing_9")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/a_0", got[0].ID())
}

func TestStore_Count_UpsertKeepsCount(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Add(ctx, newTestChunk("https://example.com/p", i, []float32{1, 0})))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Re-adding an existing id overwrites, count unchanged
	updated := newTestChunk("https://example.com/p", 1, []float32{0, 1})
	updated.Content = "updated content"
	require.NoError(t, store.Add(ctx, updated))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	got, err := store.Get(ctx, "https://example.com/p_1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updated content", got[0].Content)
}

func TestStore_ListIDs(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx,
		newTestChunk("https://example.com/a", 0, []float32{1, 0}),
		newTestChunk("https://example.com/b", 0, []float32{0, 1}),
	))

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"https://example.com/a_0", "https://example.com/b_0"}, ids)
}

func TestStore_Query_RanksByCosineDistance(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx,
		newTestChunk("https://example.com/near", 0, []float32{1.0, 0.0, 0.0}),
		newTestChunk("https://example.com/mid", 0, []float32{0.7, 0.7, 0.0}),
		newTestChunk("https://example.com/far", 0, []float32{0.0, 0.0, 1.0}),
	))

	matches, err := store.Query(ctx, []float32{1.0, 0.0, 0.0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "https://example.com/near_0", matches[0].ID)
	assert.Equal(t, "https://example.com/mid_0", matches[1].ID)
	assert.Less(t, matches[0].Distance, matches[1].Distance)
	assert.InDelta(t, 0.0, float64(matches[0].Distance), 1e-6)
}

func TestStore_Query_SkipsEmptyEmbeddings(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	noEmbedding := newTestChunk("https://example.com/none", 0, nil)
	require.NoError(t, store.Add(ctx,
		noEmbedding,
		newTestChunk("https://example.com/yes", 0, []float32{1, 0}),
	))

	matches, err := store.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "https://example.com/yes_0", matches[0].ID)
}

func TestStore_Query_InvalidArguments(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, err = store.Query(ctx, nil, 5)
	assert.Error(t, err)

	_, err = store.Query(ctx, []float32{1, 0}, 0)
	assert.Error(t, err)
}

func TestStore_Reset(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newTestChunk("https://example.com/a", 0, []float32{1, 0})))

	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Reset is idempotent
	require.NoError(t, store.Reset(ctx))
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0.0, float64(cosineDistance([]float32{1, 0}, []float32{1, 0})), 1e-6)
	assert.InDelta(t, 1.0, float64(cosineDistance([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.InDelta(t, 2.0, float64(cosineDistance([]float32{1, 0}, []float32{-1, 0})), 1e-6)

	// Zero vectors are maximally distant
	assert.InDelta(t, 1.0, float64(cosineDistance([]float32{0, 0}, []float32{1, 0})), 1e-6)
}
