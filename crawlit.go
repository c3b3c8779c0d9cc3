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


// Package crawlit assembles the crawl and search pipelines over a shared
// document store and AI provider.
//
// The Corpus type is the main entry point: it opens the primary BadgerDB
// store, silently degrading to a flat-file store when the primary cannot be
// opened, wires a caching embedder over the configured AI provider, and
// hands out crawlers and searchers bound to the shared state.
package crawlit

import (
	"log/slog"

	"github.com/poiesic/crawlit/ai"
	"github.com/poiesic/crawlit/ai/openai"
	"github.com/poiesic/crawlit/crawl"
	"github.com/poiesic/crawlit/search"
	"github.com/poiesic/crawlit/storage"
	badgerstore "github.com/poiesic/crawlit/storage/badger"
	"github.com/poiesic/crawlit/storage/flatfile"
)

// Corpus owns the document store and AI services shared by crawlers and
// searchers.
type Corpus struct {
	store    storage.DocumentStore
	provider ai.Provider
	embedder ai.Embedder
	fallback bool
	logger   *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig    *ai.Config
	provider    ai.Provider
	fallbackDir string
	cacheSize   int
}

// WithAIConfig sets the AI service configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(cfg *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI
// provider construction. Used mainly with ai/mock in tests.
func WithProvider(provider ai.Provider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// WithFallbackDir sets the directory for the flat-file store used when the
// primary store cannot be opened. Default is "<storePath>_docs".
func WithFallbackDir(dir string) CorpusOption {
	return func(o *corpusOptions) {
		if dir != "" {
			o.fallbackDir = dir
		}
	}
}

// WithEmbeddingCacheSize sets the LRU embedding cache size.
// Default is ai.DefaultEmbeddingCacheSize.
func WithEmbeddingCacheSize(size int) CorpusOption {
	return func(o *corpusOptions) {
		o.cacheSize = size
	}
}

// NewCorpus opens (or creates) a corpus at storePath.
//
// The primary BadgerDB store is tried first; if it cannot be opened the
// flat-file fallback store is used instead and a warning is logged. The
// fallback preserves all documents but does not rank query results.
func NewCorpus(storePath string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig:    ai.DefaultConfig(),
		fallbackDir: storePath + "_docs",
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default().With("component", "corpus")

	store, err := badgerstore.Open(storePath)
	fallback := false
	if err != nil {
		logger.Warn("primary document store unavailable, using flat-file fallback",
			"path", storePath, "fallback_dir", options.fallbackDir, "err", err)
		store, err = flatfile.Open(options.fallbackDir)
		if err != nil {
			return nil, err
		}
		fallback = true
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	embedder, err := ai.NewCachingEmbedder(provider.Embedder(), options.cacheSize)
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	return &Corpus{
		store:    store,
		provider: provider,
		embedder: embedder,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Store returns the underlying document store.
func (c *Corpus) Store() storage.DocumentStore {
	return c.store
}

// UsingFallback reports whether the corpus degraded to the flat-file store.
func (c *Corpus) UsingFallback() bool {
	return c.fallback
}

// NewCrawler creates a crawler writing into this corpus. The corpus's
// caching embedder is wired in unless overridden by opts.
func (c *Corpus) NewCrawler(opts ...crawl.Option) (*crawl.Crawler, error) {
	merged := append([]crawl.Option{crawl.WithEmbedder(c.embedder)}, opts...)
	return crawl.NewCrawler(c.store, c.provider, merged...)
}

// NewSearcher creates a searcher over this corpus, sharing the caching
// embedder with crawlers.
func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	merged := append([]search.Option{search.WithEmbedder(c.embedder)}, opts...)
	return search.NewSearcher(c.store, c.provider, merged...)
}

// Close releases the AI provider and the document store.
func (c *Corpus) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}
	if err := c.store.Close(); err != nil {
		c.logger.Error("error closing document store", "err", err)
		return err
	}
	return nil
}
