package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// sitemapURLSet mirrors the sitemaps.org urlset document.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// SitemapURLs fetches a sitemap and returns the page URLs it lists.
// Any failure (network, status, malformed XML) is logged and yields an
// empty slice so callers can treat a broken sitemap as an empty one.
func SitemapURLs(ctx context.Context, client *http.Client, sitemapURL string) []string {
	logger := slog.Default().With("component", "sitemap")

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		logger.Error("error building sitemap request", "url", sitemapURL, "err", err)
		return []string{}
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("error fetching sitemap", "url", sitemapURL, "err", err)
		return []string{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("error fetching sitemap", "url", sitemapURL,
			"err", fmt.Errorf("unexpected status %d", resp.StatusCode))
		return []string{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("error reading sitemap", "url", sitemapURL, "err", err)
		return []string{}
	}

	var urlset sitemapURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		logger.Error("error parsing sitemap", "url", sitemapURL, "err", err)
		return []string{}
	}

	urls := make([]string, 0, len(urlset.URLs))
	for _, entry := range urlset.URLs {
		if entry.Loc != "" {
			urls = append(urls, entry.Loc)
		}
	}

	logger.Info("found URLs in sitemap", "url", sitemapURL, "count", len(urls))
	return urls
}
