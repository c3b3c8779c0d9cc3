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
	"time"

	"github.com/poiesic/crawlit/ai"
	"github.com/poiesic/crawlit/core"
)

// Sentinel values stored when summarization fails. Document text is always
// preserved even when AI enrichment is unavailable.
const (
	SentinelTitle   = "Error processing title"
	SentinelSummary = "Error processing summary"
)

// processDocument normalizes a page, chunks it and ingests every chunk.
// Per-chunk failures are logged and skipped so one bad chunk never loses
// the rest of the page.
func (c *Crawler) processDocument(ctx context.Context, url string, markup string) error {
	var text string
	var err error
	if c.useReadability {
		text, err = ExtractReadable(markup, url)
	} else {
		text, err = NormalizeHTML(markup)
	}
	if err != nil {
		return err
	}

	chunks := ChunkText(text, c.chunkSize)
	c.logger.Info("processing chunks", "url", url, "count", len(chunks))

	crawledAt := time.Now().UTC()
	for i, chunkText := range chunks {
		chunk := c.processChunk(ctx, chunkText, i, url, crawledAt)
		if err := c.store.Add(ctx, chunk); err != nil {
			c.logger.Error("error storing chunk", "url", url, "chunk", i, "err", err)
			continue
		}
	}

	return nil
}

// processChunk enriches a chunk of text with a title, summary and embedding.
// AI failures degrade gracefully: summarization errors produce sentinel
// values and embedding errors produce a zero vector, both logged.
func (c *Crawler) processChunk(ctx context.Context, text string, number int, url string, crawledAt time.Time) *core.Chunk {
	result, err := c.summarizer.TitleAndSummary(ctx, text, url)
	if err != nil {
		c.logger.Warn("error getting title and summary", "url", url, "chunk", number, "err", err)
		result = ai.TitleSummary{Title: SentinelTitle, Summary: SentinelSummary}
	}

	embedding, err := c.embedder.EmbedText(ctx, text)
	if err != nil || len(embedding) == 0 {
		c.logger.Warn("error getting embedding, storing zero vector",
			"url", url, "chunk", number, "err", err)
		embedding = make([]float32, c.embeddingDim)
	}

	return &core.Chunk{
		URL:         url,
		ChunkNumber: number,
		Title:       result.Title,
		Summary:     result.Summary,
		Content:     text,
		Metadata:    core.NewChunkMetadata(url, len(text), crawledAt),
		Embedding:   embedding,
	}
}
