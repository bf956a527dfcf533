// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package pagescope

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/kennygrant/sanitize"
)

// Detector confidence scores. Structured data is the most explicit signal
// a page can give, the anchor-text heuristic the weakest.
const (
	scoreFeed           = 0.8
	scoreArticle        = 0.9
	scoreStructuredData = 1.0
	scoreSocialMeta     = 0.7
	scoreHeuristic      = 0.6
)

// contentExtractor runs the independent content detectors over a parsed
// page. Every detector feeds the shared registry; the registry keeps the
// best-scoring entry per URL.
type contentExtractor struct {
	base *url.URL
}

func newContentExtractor(base *url.URL) *contentExtractor {
	return &contentExtractor{base: base}
}

// Extract runs all five detectors. Detectors are independent: one finding
// nothing does not affect the others.
func (e *contentExtractor) Extract(doc *goquery.Document, reg *Registry) {
	e.detectFeeds(doc, reg)
	e.detectArticleAnchors(doc, reg)
	e.detectStructuredData(doc, reg)
	e.detectSocialMeta(doc, reg)
	e.detectHeuristicAnchors(doc, reg)
}

// detectFeeds finds RSS/Atom feed link elements.
func (e *contentExtractor) detectFeeds(doc *goquery.Document, reg *Registry) {
	doc.Find(`link[type="application/rss+xml"], link[type="application/atom+xml"], link[rel="alternate"][type*="xml"]`).
		Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			resolved := resolveRef(e.base, href)
			if resolved == "" {
				return
			}
			reg.AddContent(ContentCandidate{
				URL:    resolved,
				Title:  cleanTitle(sel.AttrOr("title", "")),
				Signal: SignalFeed,
				Score:  scoreFeed,
			})
		})
}

// detectArticleAnchors finds anchors nested inside semantic article
// containers. Trivial link text ("more", icons) is skipped.
func (e *contentExtractor) detectArticleAnchors(doc *goquery.Document, reg *Registry) {
	doc.Find("article a[href], [role=article] a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := resolveRef(e.base, href)
		if resolved == "" {
			return
		}
		title := cleanTitle(sel.Text())
		if len(title) < 4 {
			return
		}
		reg.AddContent(ContentCandidate{
			URL:    resolved,
			Title:  title,
			Signal: SignalArticle,
			Score:  scoreArticle,
		})
	})
}

// jsonLDObject is the loosely typed slice of a JSON-LD node the detector
// cares about. Pages embed wildly varying shapes, so everything else is
// ignored.
type jsonLDObject struct {
	Type     json.RawMessage `json:"@type"`
	Graph    []jsonLDObject  `json:"@graph"`
	URL      string          `json:"url"`
	Headline string          `json:"headline"`
	Name     string          `json:"name"`
}

var articleTypes = map[string]bool{
	"article":     true,
	"blogposting": true,
	"newsarticle": true,
}

// detectStructuredData parses embedded JSON-LD blocks and keeps objects
// whose declared type is article-like and that carry both a URL and a
// title. Top-level arrays and @graph containers are walked too.
func (e *contentExtractor) detectStructuredData(doc *goquery.Document, reg *Registry) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}
		var objs []jsonLDObject
		if strings.HasPrefix(raw, "[") {
			if err := json.Unmarshal([]byte(raw), &objs); err != nil {
				return
			}
		} else {
			var one jsonLDObject
			if err := json.Unmarshal([]byte(raw), &one); err != nil {
				return
			}
			objs = []jsonLDObject{one}
		}
		for _, obj := range objs {
			e.walkJSONLD(obj, reg)
		}
	})
}

func (e *contentExtractor) walkJSONLD(obj jsonLDObject, reg *Registry) {
	for _, nested := range obj.Graph {
		e.walkJSONLD(nested, reg)
	}
	if !articleType(obj.Type) {
		return
	}
	title := obj.Headline
	if title == "" {
		title = obj.Name
	}
	if obj.URL == "" || title == "" {
		return
	}
	resolved := resolveRef(e.base, obj.URL)
	if resolved == "" {
		return
	}
	reg.AddContent(ContentCandidate{
		URL:    resolved,
		Title:  cleanTitle(title),
		Signal: SignalStructuredData,
		Score:  scoreStructuredData,
	})
}

// articleType matches "@type" values that may be a string or an array of
// strings, case-insensitively.
func articleType(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return articleTypes[strings.ToLower(single)]
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, t := range many {
			if articleTypes[strings.ToLower(t)] {
				return true
			}
		}
	}
	return false
}

// detectSocialMeta pairs the page's canonical URL with its social title.
func (e *contentExtractor) detectSocialMeta(doc *goquery.Document, reg *Registry) {
	canonical, _ := doc.Find(`meta[property="og:url"]`).Attr("content")
	if canonical == "" {
		canonical, _ = doc.Find(`link[rel="canonical"]`).Attr("href")
	}
	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if title == "" {
		title = doc.Find("title").First().Text()
	}
	if canonical == "" || title == "" {
		return
	}
	resolved := resolveRef(e.base, canonical)
	if resolved == "" {
		return
	}
	reg.AddContent(ContentCandidate{
		URL:    resolved,
		Title:  cleanTitle(title),
		Signal: SignalSocialMeta,
		Score:  scoreSocialMeta,
	})
}

var pathKeywords = []string{"/post", "/article", "/blog", "/news", "/story", "/stories", "/posts", "/articles"}

// heuristicAnchorQuery selects anchors inside containers whose class or id
// suggests a post listing, without enumerating class names in Go code.
const heuristicAnchorQuery = `//*[contains(@class,"post") or contains(@class,"entry") or contains(@class,"article") or contains(@id,"post") or contains(@id,"entry")]//a[@href]`

// detectHeuristicAnchors is the fallback pass over anchors: keyword path
// segments, post-like containers, and long or "read more"-style link text.
func (e *contentExtractor) detectHeuristicAnchors(doc *goquery.Document, reg *Registry) {
	seen := make(map[string]bool)

	add := func(href, text string) {
		resolved := resolveRef(e.base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		reg.AddContent(ContentCandidate{
			URL:    resolved,
			Title:  cleanTitle(text),
			Signal: SignalHeuristic,
			Score:  scoreHeuristic,
		})
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if keywordPath(href) || readMoreText(text) {
			add(href, text)
		}
	})

	// Container membership pass. The class/id predicates are simpler as
	// XPath than as chained goquery filters.
	if len(doc.Nodes) == 0 {
		return
	}
	nodes, err := htmlquery.QueryAll(doc.Nodes[0], heuristicAnchorQuery)
	if err != nil {
		return
	}
	for _, n := range nodes {
		href := htmlquery.SelectAttr(n, "href")
		text := strings.TrimSpace(htmlquery.InnerText(n))
		if len(text) >= 4 {
			add(href, text)
		}
	}
}

func keywordPath(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, kw := range pathKeywords {
		if strings.Contains(path, kw) {
			return true
		}
	}
	return false
}

func readMoreText(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "read more") || strings.Contains(lower, "continue reading") {
		return true
	}
	return len(text) >= 40
}

// cleanTitle strips markup and collapses whitespace in a candidate title.
func cleanTitle(s string) string {
	s = sanitize.HTML(s)
	return strings.Join(strings.Fields(s), " ")
}
