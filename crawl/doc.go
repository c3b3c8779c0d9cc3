// Package crawl provides pipeline orchestration for crawling and ingesting web pages.
//
// The Crawler type manages the crawl workflow for a batch of URLs, including:
//   - Fetching pages over HTTP with a browser user agent
//   - Normalizing HTML into markdown-flavored plain text
//   - Splitting text into chunks at natural boundaries
//   - Generating titles, summaries and embeddings for each chunk
//   - Persisting chunks to a document store
//
// URLs are processed concurrently using a bounded worker pool. Per-URL and
// per-chunk failures are recorded and logged but never abort the batch;
// AI service failures degrade to sentinel titles and zero embeddings so
// document text is always preserved.
package crawl
