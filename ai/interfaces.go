package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TitleSummary is the structured result of summarizing a document chunk.
type TitleSummary struct {
	// Title is a short descriptive title for the chunk. For mid-document
	// chunks it should convey both the document title and the section.
	Title string

	// Summary captures the main points of the chunk in a sentence or two.
	Summary string
}

// Summarizer derives a title and summary for a document chunk.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// TitleAndSummary analyzes a chunk of text from the given source URL and
	// produces a title and summary for it.
	// Returns an error if the generation fails or the response cannot be parsed.
	TitleAndSummary(ctx context.Context, chunk string, url string) (TitleSummary, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Summarizer instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Summarizer returns the title and summary generation service.
	// The returned Summarizer is safe for concurrent use.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
