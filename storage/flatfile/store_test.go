package flatfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
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

func TestOpen_CreatesLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fallback")
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, filepath.Join(dir, documentsDir))
	assert.FileExists(t, filepath.Join(dir, indexFile))
	assert.FileExists(t, filepath.Join(dir, metadataFile))

	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	require.NoError(t, err)
	var meta storeMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.False(t, meta.CreatedAt.IsZero())
}

func TestStore_AddGet_RoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
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
}

func TestStore_Add_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newTestChunk("https://example.com/a", 0, []float32{1, 0})))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_Get_UnknownIDsSkipped(t *testing.T) {
	store, err := Open(t.TempDir())
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
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Add(ctx, newTestChunk("https://example.com/p", i, []float32{1, 0})))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

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

func TestStore_ListIDs_Sorted(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx,
		newTestChunk("https://example.com/b", 0, []float32{0, 1}),
		newTestChunk("https://example.com/a", 0, []float32{1, 0}),
	))

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a_0", "https://example.com/b_0"}, ids)
}

func TestStore_Query_PlaceholderDistance(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx,
		newTestChunk("https://example.com/a", 0, []float32{1, 0}),
		newTestChunk("https://example.com/b", 0, []float32{0, 1}),
		newTestChunk("https://example.com/c", 0, []float32{0, 1}),
	))

	matches, err := store.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for _, m := range matches {
		assert.Equal(t, placeholderDistance, m.Distance)
		assert.NotEmpty(t, m.Document)
		assert.NotNil(t, m.Metadata)
	}
}

func TestStore_Query_InvalidLimit(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Query(context.Background(), []float32{1, 0}, 0)
	assert.Error(t, err)
}

func TestStore_Reset(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newTestChunk("https://example.com/a", 0, []float32{1, 0})))

	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Layout is re-created after reset
	assert.DirExists(t, filepath.Join(dir, documentsDir))
	assert.FileExists(t, filepath.Join(dir, indexFile))

	// Reset is idempotent
	require.NoError(t, store.Reset(ctx))
}
