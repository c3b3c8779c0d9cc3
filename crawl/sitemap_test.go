package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc>https://example.com/about</loc></url>
  <url><loc>https://example.com/docs</loc></url>
</urlset>`

func TestSitemapURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sampleSitemap))
	}))
	defer server.Close()

	urls := SitemapURLs(context.Background(), server.Client(), server.URL+"/sitemap.xml")
	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/docs",
	}, urls)
}

func TestSitemapURLs_ErrorStatusYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	urls := SitemapURLs(context.Background(), server.Client(), server.URL+"/sitemap.xml")
	assert.Empty(t, urls)
}

func TestSitemapURLs_MalformedXMLYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<urlset><url><loc>broken"))
	}))
	defer server.Close()

	urls := SitemapURLs(context.Background(), server.Client(), server.URL+"/sitemap.xml")
	assert.Empty(t, urls)
}

func TestSitemapURLs_UnreachableHostYieldsEmpty(t *testing.T) {
	urls := SitemapURLs(context.Background(), nil, "http://127.0.0.1:1/sitemap.xml")
	assert.Empty(t, urls)
}
