package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/crawlit/crawl"
)

// progressMonitor prints crawl progress to a writer, one line rewritten in
// place, with a final summary on completion.
type progressMonitor struct {
	writer    io.Writer
	startTime time.Time
	mu        sync.Mutex
}

func newProgressMonitor(writer io.Writer) *progressMonitor {
	return &progressMonitor{
		writer:    writer,
		startTime: time.Now(),
	}
}

func (m *progressMonitor) URLProcessed(s crawl.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	percentage := 0.0
	if s.TotalURLs > 0 {
		percentage = float64(s.ProcessedURLs) / float64(s.TotalURLs) * 100.0
	}
	rate := float64(s.ProcessedURLs) / time.Since(m.startTime).Seconds()

	fmt.Fprintf(m.writer, "\rProgress: %d/%d (%.1f%%) - %.1f urls/s",
		s.ProcessedURLs, s.TotalURLs, percentage, rate)
}

func (m *progressMonitor) CrawlComplete(s crawl.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fmt.Fprintf(m.writer, "\nCrawled %d of %d URLs (%d failed) in %s\n",
		s.SuccessfulURLs, s.TotalURLs, s.FailedURLs,
		time.Since(m.startTime).Round(time.Millisecond))
	if s.LastError != "" {
		fmt.Fprintf(m.writer, "Last error: %s\n", s.LastError)
	}
}
