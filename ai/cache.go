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


package ai

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/crawlit/core"
)

// DefaultEmbeddingCacheSize bounds the number of cached embeddings.
const DefaultEmbeddingCacheSize = 4096

// CachingEmbedder wraps an Embedder with an LRU cache keyed by a content
// hash of the input text. Repeated chunks (navigation boilerplate, repeated
// crawls of the same page) skip the embedding service entirely.
//
// The cache is safe for concurrent use.
type CachingEmbedder struct {
	inner Embedder
	cache *lru.Cache[core.ID, []float32]
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder wraps inner with an LRU cache of the given size.
// A non-positive size falls back to DefaultEmbeddingCacheSize.
func NewCachingEmbedder(inner Embedder, size int) (*CachingEmbedder, error) {
	if size <= 0 {
		size = DefaultEmbeddingCacheSize
	}
	cache, err := lru.New[core.ID, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachingEmbedder{inner: inner, cache: cache}, nil
}

// EmbedText returns the cached embedding for text, computing and caching it
// on a miss.
func (e *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := core.IDFromContent(text)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	embedding, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, embedding)
	return embedding, nil
}

// EmbedTexts resolves cached entries first and batches only the misses
// through the inner embedder. Results are returned in input order.
func (e *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		key := core.IDFromContent(text)
		if cached, ok := e.cache.Get(key); ok {
			results[i] = cached
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return results, nil
	}

	computed, err := e.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}

	for j, embedding := range computed {
		i := missingIdx[j]
		results[i] = embedding
		e.cache.Add(core.IDFromContent(texts[i]), embedding)
	}

	return results, nil
}

// Len returns the number of cached embeddings.
func (e *CachingEmbedder) Len() int {
	return e.cache.Len()
}
