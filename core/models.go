package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a fixed-width identifier derived from content.
// It is used where chunk ids (which embed full URLs) are unsuitable,
// such as file names and cache keys.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk represents one retrievable unit of a crawled document.
// It carries the raw chunk text plus derived fields populated during ingestion.
type Chunk struct {
	URL         string
	ChunkNumber int               // Zero-based position within the source document
	Title       string            // Derived by the summarizer (sentinel value on failure)
	Summary     string            // Derived by the summarizer (sentinel value on failure)
	Content     string
	Metadata    map[string]string // source, chunk_size, crawled_at, url_path, url
	Embedding   []float32         // Fixed-length vector (zero vector on embedding failure)
	InsertedAt  time.Time         // When the chunk was first stored
	UpdatedAt   time.Time         // When the chunk was last overwritten
}

// ChunkID returns the stable external document id for a (url, chunkNumber) pair.
// Re-ingesting a URL produces the same ids and overwrites same-numbered chunks.
func ChunkID(url string, chunkNumber int) string {
	return fmt.Sprintf("%s_%d", url, chunkNumber)
}

// ID returns the chunk's external document id.
func (c *Chunk) ID() string {
	return ChunkID(c.URL, c.ChunkNumber)
}

// NewChunkMetadata builds the standard metadata mapping for a chunk of the
// given source URL. Unparseable URLs yield empty source/url_path entries.
func NewChunkMetadata(rawURL string, chunkSize int, crawledAt time.Time) map[string]string {
	var host, path string
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
		path = u.Path
	}
	return map[string]string{
		"source":     host,
		"chunk_size": strconv.Itoa(chunkSize),
		"crawled_at": crawledAt.UTC().Format(time.RFC3339),
		"url_path":   path,
		"url":        rawURL,
	}
}
