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

import "sync"

// Snapshot is a point-in-time view of crawl progress.
// Counters always satisfy ProcessedURLs == SuccessfulURLs + FailedURLs
// and ProcessedURLs <= TotalURLs.
type Snapshot struct {
	// TotalURLs is the number of URLs in the batch.
	TotalURLs int

	// ProcessedURLs is the number of URLs whose processing has finished,
	// successfully or not.
	ProcessedURLs int

	// SuccessfulURLs is the number of URLs fully fetched and ingested.
	SuccessfulURLs int

	// FailedURLs is the number of URLs that could not be processed.
	FailedURLs int

	// IsComplete is true once the whole batch has finished.
	IsComplete bool

	// LastProcessedURL is the most recently finished URL.
	LastProcessedURL string

	// LastError describes the most recent per-URL failure, empty if none.
	LastError string
}

// status tracks crawl progress under a mutex. Worker goroutines record
// outcomes through it; each mutation returns a consistent Snapshot so
// monitors never observe torn counters.
type status struct {
	mu   sync.Mutex
	snap Snapshot
}

func newStatus(total int) *status {
	return &status{snap: Snapshot{TotalURLs: total}}
}

func (s *status) recordSuccess(url string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ProcessedURLs++
	s.snap.SuccessfulURLs++
	s.snap.LastProcessedURL = url
	return s.snap
}

func (s *status) recordFailure(url string, err error) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ProcessedURLs++
	s.snap.FailedURLs++
	s.snap.LastProcessedURL = url
	if err != nil {
		s.snap.LastError = err.Error()
	}
	return s.snap
}

func (s *status) markComplete() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.IsComplete = true
	return s.snap
}

func (s *status) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Monitor provides hooks to observe crawl progress.
// Implement this interface to surface progress to users or metrics.
// Callbacks may be invoked from worker goroutines, one at a time.
type Monitor interface {
	URLProcessed(snapshot Snapshot)
	CrawlComplete(snapshot Snapshot)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) URLProcessed(_ Snapshot)  {}
func (n *noopMonitor) CrawlComplete(_ Snapshot) {}
