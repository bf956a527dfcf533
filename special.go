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

	"github.com/antchfx/xmlquery"
	"github.com/temoto/robotstxt"
)

// specialProber checks an origin's well-known files. Every probe is
// best-effort: a missing or malformed file contributes nothing.
type specialProber struct {
	fetcher *fetcher
}

func newSpecialProber(f *fetcher) *specialProber {
	return &specialProber{fetcher: f}
}

// Probe fetches robots.txt, the sitemap and the web app manifest from the
// target's origin and registers what it finds. Sitemaps named in
// robots.txt are probed in addition to the conventional location.
func (p *specialProber) Probe(ctx context.Context, base *url.URL, reg *Registry) {
	origin := base.Scheme + "://" + base.Host

	sitemaps := p.probeRobots(ctx, base, origin, reg)
	seen := map[string]bool{origin + "/sitemap.xml": true}
	p.probeSitemap(ctx, origin+"/sitemap.xml", reg, true)
	for _, sm := range sitemaps {
		sm = resolveRef(base, sm)
		if sm != "" && !seen[sm] {
			seen[sm] = true
			p.probeSitemap(ctx, sm, reg, true)
		}
	}
	p.probeManifest(ctx, origin, reg)
}

// probeRobots registers robots.txt itself plus the paths it discloses, and
// returns any sitemap URLs it names.
func (p *specialProber) probeRobots(ctx context.Context, base *url.URL, origin string, reg *Registry) []string {
	robotsURL := origin + "/robots.txt"
	body, status, err := p.fetcher.fetchResource(ctx, robotsURL)
	if err != nil || status != 200 {
		return nil
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	p.add(reg, robotsURL, CategoryRobots, "robots.txt")

	// Disallowed paths are disclosed intentionally and often point at
	// admin or API surfaces.
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if !strings.HasPrefix(lower, "disallow:") {
			continue
		}
		path := strings.TrimSpace(line[len("disallow:"):])
		if path == "" || path == "/" || strings.ContainsAny(path, "*$") {
			continue
		}
		if resolved := resolveRef(base, path); resolved != "" {
			p.add(reg, resolved, CategoryRobots, "disallowed path")
		}
	}
	return data.Sitemaps
}

// probeSitemap parses a sitemap and registers its URL entries. A sitemap
// index is followed one level deep; nested indexes are registered but not
// expanded.
func (p *specialProber) probeSitemap(ctx context.Context, sitemapURL string, reg *Registry, followIndex bool) {
	body, status, err := p.fetcher.fetchResource(ctx, sitemapURL)
	if err != nil || status != 200 {
		return
	}
	doc, err := xmlquery.Parse(strings.NewReader(string(body)))
	if err != nil {
		return
	}
	smBase, err := url.Parse(sitemapURL)
	if err != nil {
		return
	}
	p.add(reg, sitemapURL, CategorySitemap, "sitemap")

	for _, n := range xmlquery.Find(doc, "//url/loc") {
		if loc := resolveRef(smBase, n.InnerText()); loc != "" {
			p.add(reg, loc, CategorySitemap, "sitemap entry")
		}
	}
	for _, n := range xmlquery.Find(doc, "//sitemap/loc") {
		loc := resolveRef(smBase, n.InnerText())
		if loc == "" {
			continue
		}
		if followIndex {
			p.probeSitemap(ctx, loc, reg, false)
		} else {
			p.add(reg, loc, CategorySitemap, "sitemap index entry")
		}
	}
}

func (p *specialProber) probeManifest(ctx context.Context, origin string, reg *Registry) {
	manifestURL := origin + "/manifest.json"
	_, status, err := p.fetcher.fetchResource(ctx, manifestURL)
	if err != nil || status != 200 {
		return
	}
	p.add(reg, manifestURL, CategoryManifest, "web app manifest")
}

func (p *specialProber) add(reg *Registry, rawURL, category, context string) {
	call := NetworkCall{
		URL:      rawURL,
		Method:   "GET",
		Context:  context,
		Category: category,
		Origin:   OriginSpecialFile,
	}
	call.Score = scoreCall(&call)
	reg.AddCall(call)
}
