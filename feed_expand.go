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
	"context"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// feedExpander fetches feeds discovered by the content extractor and
// registers their entries as content candidates. Expansion is best-effort:
// a feed that fails to fetch or parse contributes nothing.
type feedExpander struct {
	fetcher  *fetcher
	maxItems int
}

func newFeedExpander(f *fetcher, maxItems int) *feedExpander {
	return &feedExpander{fetcher: f, maxItems: maxItems}
}

// Expand resolves every feed-signal candidate already in the registry and
// merges its entries back in. Entries inherit the feed detector's score so
// a stronger detector for the same URL still wins.
func (e *feedExpander) Expand(ctx context.Context, reg *Registry) {
	var feedURLs []string
	for _, c := range reg.ContentItems() {
		if c.Signal == SignalFeed {
			feedURLs = append(feedURLs, c.URL)
		}
	}
	parser := gofeed.NewParser()
	for _, feedURL := range feedURLs {
		e.expandOne(ctx, parser, feedURL, reg)
	}
}

func (e *feedExpander) expandOne(ctx context.Context, parser *gofeed.Parser, feedURL string, reg *Registry) {
	base, err := url.Parse(feedURL)
	if err != nil {
		return
	}
	body, status, err := e.fetcher.fetchResource(ctx, feedURL)
	if err != nil || status < 200 || status > 299 {
		return
	}
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return
	}
	n := 0
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		if n >= e.maxItems {
			break
		}
		resolved := resolveRef(base, item.Link)
		if resolved == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		reg.AddContent(ContentCandidate{
			URL:    resolved,
			Title:  cleanTitle(title),
			Signal: SignalFeed,
			Score:  scoreFeed,
		})
		n++
	}
}
