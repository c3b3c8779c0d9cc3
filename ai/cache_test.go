package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder is a local stub; the full mock lives in ai/mock, which
// cannot be imported here without a cycle.
type countingEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (e *countingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text)
}

func (e *countingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		embedding, err := e.embed(text)
		if err != nil {
			return nil, err
		}
		results = append(results, embedding)
	}
	return results, nil
}

func (e *countingEmbedder) embed(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.fail {
		return nil, errors.New("embedding service unavailable")
	}
	return []float32{float32(len(text)), 1.0}, nil
}

func (e *countingEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func TestCachingEmbedder_EmbedText_CachesRepeats(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachingEmbedder(inner, 10)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cached.EmbedText(ctx, "hello world")
	require.NoError(t, err)

	second, err := cached.EmbedText(ctx, "hello world")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.callCount())
	assert.Equal(t, 1, cached.Len())
}

func TestCachingEmbedder_EmbedTexts_OnlyMissesHitService(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachingEmbedder(inner, 10)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cached.EmbedText(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, 1, inner.callCount())

	results, err := cached.EmbedTexts(ctx, []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.NotNil(t, r, "result %d", i)
	}

	// alpha was cached, only beta and gamma hit the service
	assert.Equal(t, 3, inner.callCount())
	assert.Equal(t, 3, cached.Len())
}

func TestCachingEmbedder_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	cached, err := NewCachingEmbedder(inner, 10)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cached.EmbedText(ctx, "oops")
	assert.Error(t, err)
	assert.Equal(t, 0, cached.Len())

	inner.fail = false
	embedding, err := cached.EmbedText(ctx, "oops")
	require.NoError(t, err)
	assert.NotEmpty(t, embedding)
}

func TestNewCachingEmbedder_DefaultSize(t *testing.T) {
	cached, err := NewCachingEmbedder(&countingEmbedder{}, 0)
	require.NoError(t, err)
	assert.NotNil(t, cached)
}
