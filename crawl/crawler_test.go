package crawl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/crawlit/ai"
	"github.com/poiesic/crawlit/ai/mock"
	badgerstore "github.com/poiesic/crawlit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMonitor captures every progress callback for assertions.
type recordingMonitor struct {
	mu        sync.Mutex
	processed []Snapshot
	complete  []Snapshot
}

func (m *recordingMonitor) URLProcessed(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, s)
}

func (m *recordingMonitor) CrawlComplete(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.complete = append(m.complete, s)
}

func TestNewCrawler_RequiresStoreAndProvider(t *testing.T) {
	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = NewCrawler(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewCrawler(store, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestCrawl_EmptyURLList(t *testing.T) {
	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	crawler, err := NewCrawler(store, mock.NewMockProvider())
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	snap, err := crawler.CrawlWithMonitor(context.Background(), nil, monitor)
	require.NoError(t, err)

	assert.True(t, snap.IsComplete)
	assert.Equal(t, 0, snap.TotalURLs)
	assert.Empty(t, monitor.processed)
	require.Len(t, monitor.complete, 1)
}

func TestCrawl_MixedSuccessAndFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	crawler, err := NewCrawler(store, mock.NewMockProvider(),
		WithMaxConcurrent(1),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	snap, err := crawler.CrawlWithMonitor(context.Background(),
		[]string{server.URL + "/docs", server.URL + "/missing"}, monitor)
	require.NoError(t, err)

	assert.True(t, snap.IsComplete)
	assert.Equal(t, 2, snap.TotalURLs)
	assert.Equal(t, 2, snap.ProcessedURLs)
	assert.Equal(t, 1, snap.SuccessfulURLs)
	assert.Equal(t, 1, snap.FailedURLs)
	assert.NotEmpty(t, snap.LastError)

	assert.Len(t, monitor.processed, 2)
	require.Len(t, monitor.complete, 1)

	// The successful page was chunked and stored
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestCrawl_RespectsConcurrencyLimit(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			observed := maxInFlight.Load()
			if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
				break
			}
		}

		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	crawler, err := NewCrawler(store, mock.NewMockProvider(),
		WithMaxConcurrent(2),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	urls := make([]string, 10)
	for i := range urls {
		urls[i] = server.URL + "/page" + string(rune('a'+i))
	}

	snap, err := crawler.Crawl(context.Background(), urls)
	require.NoError(t, err)

	assert.Equal(t, 10, snap.ProcessedURLs)
	assert.Equal(t, 10, snap.SuccessfulURLs)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestCrawl_DegradesOnAIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	summarizer := mock.NewMockSummarizer()
	summarizer.TitleAndSummaryFunc = func(ctx context.Context, chunk, url string) (ai.TitleSummary, error) {
		return ai.TitleSummary{}, errors.New("completion service down")
	}

	crawler, err := NewCrawler(store, mock.NewMockProviderWithServices(embedder, summarizer),
		WithHTTPClient(server.Client()),
		WithEmbeddingDim(8),
	)
	require.NoError(t, err)

	ctx := context.Background()
	snap, err := crawler.Crawl(ctx, []string{server.URL + "/docs"})
	require.NoError(t, err)

	// Ingestion succeeds even with every AI call failing
	assert.Equal(t, 1, snap.SuccessfulURLs)
	assert.Equal(t, 0, snap.FailedURLs)

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	chunks, err := store.Get(ctx, ids...)
	require.NoError(t, err)
	for _, chunk := range chunks {
		assert.Equal(t, SentinelTitle, chunk.Title)
		assert.Equal(t, SentinelSummary, chunk.Summary)
		assert.Equal(t, make([]float32, 8), chunk.Embedding)
		assert.NotEmpty(t, chunk.Content)
	}
}

func TestCrawl_StoresChunkMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	crawler, err := NewCrawler(store, mock.NewMockProvider(), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = crawler.Crawl(ctx, []string{server.URL + "/docs/guide"})
	require.NoError(t, err)

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	chunks, err := store.Get(ctx, ids...)
	require.NoError(t, err)
	for _, chunk := range chunks {
		assert.Equal(t, "/docs/guide", chunk.Metadata["url_path"])
		assert.NotEmpty(t, chunk.Metadata["source"])
		assert.NotEmpty(t, chunk.Metadata["crawled_at"])
	}
}
