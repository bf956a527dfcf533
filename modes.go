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
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Mode describes everything an analysis mode controls: which scanner
// signatures run, which pipeline stages engage, and which candidates make
// the final cut. The whole pipeline consults this table exactly once per
// request; no mode name is compared anywhere else.
type Mode struct {
	Name string
	// Content selects the content-extraction pipeline instead of the
	// network-call pipeline.
	Content bool
	// Signatures restricts the scanner to the named signatures.
	// Nil runs the whole registry.
	Signatures []string
	// Predicate filters finished candidates. Nil admits everything.
	Predicate func(*NetworkCall) bool
	// Dynamic engages a rendered capture session.
	Dynamic bool
	// Special probes the origin's well-known files (sitemap, robots,
	// web app manifest).
	Special bool
	// ScriptLoads emits the page's external script URLs as candidates.
	ScriptLoads bool
	// ProbeB64 enables the obfuscated-literal decode pass.
	ProbeB64 bool
}

var modeTable = map[string]*Mode{
	"posts": {Name: "posts", Content: true},
	"post": {
		Name:      "post",
		Predicate: func(c *NetworkCall) bool { return c.Method == "POST" },
	},
	"get": {
		Name:      "get",
		Predicate: func(c *NetworkCall) bool { return c.Method == "GET" },
	},
	"fetch": {
		Name:       "fetch",
		Signatures: []string{"fetch", "fetch-method"},
	},
	"xhr": {
		Name:       "xhr",
		Signatures: []string{"xhr-open", "lib-post", "lib-get"},
	},
	"graphql": {
		Name:       "graphql",
		Signatures: []string{"graphql-endpoint", "graphql-operation"},
		Predicate: func(c *NetworkCall) bool {
			return c.Category == CategoryGraphQL || c.Method == MethodGraphQL
		},
	},
	"ws": {
		Name:       "ws",
		Signatures: []string{"websocket", "ws-literal"},
		Predicate: func(c *NetworkCall) bool {
			return strings.HasPrefix(c.URL, "ws://") || strings.HasPrefix(c.URL, "wss://")
		},
	},
	"scripts": {
		Name:        "scripts",
		Signatures:  []string{},
		ScriptLoads: true,
		Predicate:   func(c *NetworkCall) bool { return c.Category == CategoryScript },
	},
	"sitemap": {
		Name:       "sitemap",
		Signatures: []string{},
		Special:    true,
		Predicate:  func(c *NetworkCall) bool { return c.Category == CategorySitemap },
	},
	"robots": {
		Name:       "robots",
		Signatures: []string{},
		Special:    true,
		Predicate:  func(c *NetworkCall) bool { return c.Category == CategoryRobots },
	},
	"hidden": {
		Name:     "hidden",
		ProbeB64: true,
		Predicate: func(c *NetworkCall) bool {
			return c.Category == CategoryHiddenAPI || apiLike(c.URL)
		},
	},
	"all":           {Name: "all", Special: true, ScriptLoads: true, ProbeB64: true},
	"all-endpoints": {Name: "all-endpoints", Special: true, ScriptLoads: true, ProbeB64: true},
	"full":          {Name: "full", Special: true, ScriptLoads: true, ProbeB64: true, Dynamic: true},
}

// ModeFor looks up a mode by name. The empty string selects "posts".
func ModeFor(name string) (*Mode, error) {
	if name == "" {
		name = "posts"
	}
	m, ok := modeTable[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, name)
	}
	return m, nil
}

// ModeNames returns the supported mode names in sorted order.
func ModeNames() []string {
	names := make([]string, 0, len(modeTable))
	for name := range modeTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// apiLikePath matches URL shapes that usually front a data API rather
// than a document.
var apiLikePath = regexp.MustCompile(`(?i)(/api/|/v\d+/|/graphql|/rest/|/ajax/)`)

var staticAssetGlobs = func() []glob.Glob {
	exts := []string{
		"js", "mjs", "css", "map",
		"png", "jpg", "jpeg", "gif", "svg", "ico", "webp", "avif",
		"woff", "woff2", "ttf", "eot", "otf",
		"mp3", "mp4", "webm", "ogg",
	}
	gs := make([]glob.Glob, 0, len(exts))
	for _, ext := range exts {
		gs = append(gs, glob.MustCompile("*."+ext))
	}
	return gs
}()

// staticAsset reports whether the URL path ends in a common static-asset
// extension. Query strings are ignored.
func staticAsset(rawURL string) bool {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, g := range staticAssetGlobs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// apiLike reports whether a URL looks like an API endpoint: an API-shaped
// path that is not a plain static asset.
func apiLike(rawURL string) bool {
	return apiLikePath.MatchString(rawURL) && !staticAsset(rawURL)
}

// classifyCall finalizes a statically scanned candidate's category.
// XHR and fetch call sites pointing at API-shaped paths are promoted to
// the hidden-API category.
func classifyCall(base, rawURL, method string) string {
	if (base == CategoryXHR || base == CategoryFetch || base == CategoryHiddenAPI) && apiLike(rawURL) {
		return CategoryHiddenAPI
	}
	if base == CategoryHiddenAPI {
		// The probe guessed hidden but the URL shape disagrees.
		return CategoryXHR
	}
	return base
}

// classifyDynamicResource labels a live-captured resource from its
// devtools resource type, URL shape and method.
func classifyDynamicResource(resourceType, rawURL, method string) string {
	switch resourceType {
	case "XHR":
		if apiLike(rawURL) {
			return CategoryHiddenAPI
		}
		return CategoryXHR
	case "Fetch":
		if apiLike(rawURL) {
			return CategoryHiddenAPI
		}
		return CategoryFetch
	case "Document":
		return CategoryDocument
	case "Stylesheet":
		return CategoryStylesheet
	case "Script":
		return CategoryScript
	case "Image":
		return CategoryImage
	case "Media":
		return CategoryMedia
	case "Font":
		return CategoryFont
	case "WebSocket":
		return CategorySocket
	default:
		if strings.HasPrefix(rawURL, "ws://") || strings.HasPrefix(rawURL, "wss://") {
			return CategorySocket
		}
		if apiLike(rawURL) {
			return CategoryHiddenAPI
		}
		return CategoryOther
	}
}
