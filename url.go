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
	"net/url"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// normalizeTarget parses and normalizes the analysis target URL following
// the WHATWG URL living standard, then converts to net/url for resolution.
// Only http and https targets are accepted.
func normalizeTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	parsedWhatwg, err := urlParser.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL
	}
	parsed, err := url.Parse(parsedWhatwg.Href(false))
	if err != nil {
		return nil, ErrInvalidURL
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidURL
	}
	return parsed, nil
}

// resolveRef resolves a captured reference against the page base URL.
// Absolute URLs pass through, root-relative and path-relative references
// are resolved. Returns "" for anything that cannot become an absolute
// http(s)/ws(s) URL; callers skip those candidates silently.
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "blob:", "about:", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(refURL)
	switch resolved.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
