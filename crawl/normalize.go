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
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// NormalizeHTML converts an HTML document into a markdown-flavored plain
// text representation suitable for chunking and embedding.
//
// Script and style elements are dropped. Headings are prefixed with '#'
// markers matching their level and links are rewritten as [text](href).
// Both rewrites substitute on the extracted text, so text that appears
// verbatim elsewhere in the document is rewritten there too.
// Blank lines are removed entirely.
func NormalizeHTML(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	text := textWithSeparator(doc.Selection)

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		level := int(name[1] - '0')
		headingText := strings.TrimSpace(s.Text())
		if headingText != "" {
			text = strings.ReplaceAll(text, headingText,
				strings.Repeat("#", level)+" "+headingText)
		}
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		linkText := strings.TrimSpace(s.Text())
		href, ok := s.Attr("href")
		if linkText != "" && ok && href != "" {
			text = strings.ReplaceAll(text, linkText, "["+linkText+"]("+href+")")
		}
	})

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// ExtractReadable runs readability extraction on the document and normalizes
// only the main article content, cutting navigation and chrome. Falls back
// to normalizing the full document when extraction fails or comes up empty.
func ExtractReadable(markup string, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return NormalizeHTML(markup)
	}

	article, err := readability.FromReader(strings.NewReader(markup), parsed)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return NormalizeHTML(markup)
	}

	return NormalizeHTML(article.Content)
}

// textWithSeparator extracts all text nodes under the selection joined by
// newlines. goquery's Text() concatenates nodes without separators, which
// glues adjacent block elements together.
func textWithSeparator(sel *goquery.Selection) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.Join(parts, "\n")
}
