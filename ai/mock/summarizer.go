package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/crawlit/ai"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
// Safe for concurrent use.
type MockSummarizer struct {
	// TitleAndSummaryFunc is called by TitleAndSummary if set.
	// If nil, uses default behavior derived from the chunk text.
	TitleAndSummaryFunc func(ctx context.Context, chunk string, url string) (ai.TitleSummary, error)

	mu        sync.Mutex
	callCount int
}

// NewMockSummarizer creates a mock summarizer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockSummarizer().
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// TitleAndSummary derives a simple title and summary from the chunk text.
// Default behavior: the title is the first line of the chunk, the summary
// is a truncated prefix of the whole chunk.
func (m *MockSummarizer) TitleAndSummary(ctx context.Context, chunk string, url string) (ai.TitleSummary, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.TitleAndSummaryFunc != nil {
		return m.TitleAndSummaryFunc(ctx, chunk, url)
	}

	trimmed := strings.TrimSpace(chunk)

	title := trimmed
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(strings.TrimLeft(title, "# "))
	if title == "" {
		title = url
	}
	if len(title) > 80 {
		title = title[:80]
	}

	summary := trimmed
	if len(summary) > 200 {
		summary = summary[:200]
	}

	return ai.TitleSummary{Title: title, Summary: summary}, nil
}

// CallCount returns the number of times TitleAndSummary was called.
func (m *MockSummarizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockSummarizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.TitleAndSummaryFunc = nil
}
