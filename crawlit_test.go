package crawlit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/crawlit/ai/mock"
	"github.com/poiesic/crawlit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorpus_UsesPrimaryStore(t *testing.T) {
	corpus, err := NewCorpus(filepath.Join(t.TempDir(), "db"),
		WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer corpus.Close()

	assert.False(t, corpus.UsingFallback())

	count, err := corpus.Store().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNewCorpus_FallsBackToFlatFile(t *testing.T) {
	dir := t.TempDir()

	// A regular file where the primary store wants a directory
	blocked := filepath.Join(dir, "db")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0644))

	corpus, err := NewCorpus(blocked,
		WithProvider(mock.NewMockProvider()),
		WithFallbackDir(filepath.Join(dir, "docs")))
	require.NoError(t, err)
	defer corpus.Close()

	assert.True(t, corpus.UsingFallback())

	// The fallback store accepts writes
	ctx := context.Background()
	chunk := &core.Chunk{
		URL:         "https://example.com/a",
		ChunkNumber: 0,
		Content:     "fallback content",
		Embedding:   []float32{1, 0},
	}
	require.NoError(t, corpus.Store().Add(ctx, chunk))

	count, err := corpus.Store().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCorpus_NewCrawlerAndSearcher(t *testing.T) {
	corpus, err := NewCorpus(filepath.Join(t.TempDir(), "db"),
		WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer corpus.Close()

	crawler, err := corpus.NewCrawler()
	require.NoError(t, err)
	assert.NotNil(t, crawler)

	searcher, err := corpus.NewSearcher()
	require.NoError(t, err)
	assert.NotNil(t, searcher)
}
