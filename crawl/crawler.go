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


package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/crawlit/ai"
	"github.com/poiesic/crawlit/storage"
)

const (
	// DefaultMaxConcurrent bounds the number of URLs fetched at once.
	DefaultMaxConcurrent = 3

	// DefaultUserAgent presents as a desktop browser; some sites refuse
	// requests with obvious bot agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// defaultFetchTimeout is the per-request HTTP timeout.
	defaultFetchTimeout = 30 * time.Second

	// maxResponseBytes caps page downloads.
	maxResponseBytes = 10 << 20
)

// Crawler fetches web pages and ingests their content into a document store.
// URLs are processed concurrently by a bounded worker pool; chunks within a
// page are processed sequentially.
type Crawler struct {
	store          storage.DocumentStore
	embedder       ai.Embedder
	summarizer     ai.Summarizer
	client         *http.Client
	maxConcurrent  int
	chunkSize      int
	embeddingDim   int
	userAgent      string
	useReadability bool
	logger         *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler) error

// WithMaxConcurrent sets the number of URLs fetched concurrently.
// Default is DefaultMaxConcurrent. Values below 1 are clamped to 1.
func WithMaxConcurrent(n int) Option {
	return func(c *Crawler) error {
		if n < 1 {
			n = 1
		}
		c.maxConcurrent = n
		return nil
	}
}

// WithChunkSize sets the target chunk size in bytes.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(c *Crawler) error {
		if size <= 0 {
			size = DefaultChunkSize
		}
		c.chunkSize = size
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for page fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) error {
		if client != nil {
			c.client = client
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with page fetches.
func WithUserAgent(agent string) Option {
	return func(c *Crawler) error {
		if agent != "" {
			c.userAgent = agent
		}
		return nil
	}
}

// WithEmbeddingDim sets the dimensionality used for fallback zero vectors
// when the embedding service fails. Default is 1536.
func WithEmbeddingDim(dim int) Option {
	return func(c *Crawler) error {
		if dim > 0 {
			c.embeddingDim = dim
		}
		return nil
	}
}

// WithReadability enables readability extraction before normalization,
// cutting navigation and page chrome from the ingested text.
func WithReadability(enabled bool) Option {
	return func(c *Crawler) error {
		c.useReadability = enabled
		return nil
	}
}

// WithEmbedder replaces the provider's embedder, e.g. to wrap it with
// ai.NewCachingEmbedder.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(c *Crawler) error {
		if embedder != nil {
			c.embedder = embedder
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "crawler")
		return nil
	}
}

// NewCrawler creates a crawler writing to the given store and using the
// given AI provider for summarization and embeddings.
func NewCrawler(store storage.DocumentStore, provider ai.Provider, opts ...Option) (*Crawler, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	c := &Crawler{
		store:         store,
		embedder:      provider.Embedder(),
		summarizer:    provider.Summarizer(),
		client:        &http.Client{Timeout: defaultFetchTimeout},
		maxConcurrent: DefaultMaxConcurrent,
		chunkSize:     DefaultChunkSize,
		embeddingDim:  1536,
		userAgent:     DefaultUserAgent,
		logger:        slog.Default().With("component", "crawler"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Crawl fetches and ingests the given URLs, returning the final progress
// snapshot. Per-URL failures are counted, not returned as errors.
func (c *Crawler) Crawl(ctx context.Context, urls []string) (Snapshot, error) {
	return c.CrawlWithMonitor(ctx, urls, nil)
}

// CrawlWithMonitor is Crawl with progress callbacks. A nil monitor is
// replaced with a no-op implementation.
func (c *Crawler) CrawlWithMonitor(ctx context.Context, urls []string, monitor Monitor) (Snapshot, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	st := newStatus(len(urls))

	if len(urls) == 0 {
		c.logger.Info("no URLs provided for crawling")
		snap := st.markComplete()
		monitor.CrawlComplete(snap)
		return snap, nil
	}

	c.logger.Info("starting crawl", "urls", len(urls), "max_concurrent", c.maxConcurrent)

	pool, err := ants.NewPool(c.maxConcurrent)
	if err != nil {
		return st.snapshot(), err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := c.crawlURL(ctx, url); err != nil {
				c.logger.Error("error crawling url", "url", url, "err", err)
				monitor.URLProcessed(st.recordFailure(url, err))
				return
			}
			monitor.URLProcessed(st.recordSuccess(url))
		})
		if submitErr != nil {
			wg.Done()
			c.logger.Error("error submitting url to pool", "url", url, "err", submitErr)
			monitor.URLProcessed(st.recordFailure(url, submitErr))
		}
	}
	wg.Wait()

	snap := st.markComplete()
	monitor.CrawlComplete(snap)

	c.logger.Info("crawl complete",
		"total", snap.TotalURLs,
		"successful", snap.SuccessfulURLs,
		"failed", snap.FailedURLs)

	return snap, nil
}

// crawlURL fetches a single page and ingests its content.
func (c *Crawler) crawlURL(ctx context.Context, url string) error {
	c.logger.Debug("crawling", "url", url)

	markup, err := c.fetch(ctx, url)
	if err != nil {
		return err
	}

	return c.processDocument(ctx, url, markup)
}

// fetch retrieves a page body as a string.
func (c *Crawler) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}

	return string(body), nil
}
