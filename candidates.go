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

// Signal identifies which structural detector proposed a content candidate.
type Signal string

const (
	// SignalFeed marks candidates discovered through RSS/Atom link elements
	SignalFeed Signal = "feed"
	// SignalArticle marks anchors found inside semantic article containers
	SignalArticle Signal = "article"
	// SignalStructuredData marks candidates from JSON-LD article objects
	SignalStructuredData Signal = "structured-data"
	// SignalSocialMeta marks candidates from Open Graph metadata pairs
	SignalSocialMeta Signal = "social-meta"
	// SignalHeuristic marks candidates from the anchor/text-pattern fallback
	SignalHeuristic Signal = "heuristic"
)

// Origin identifies how a network-call candidate was discovered.
type Origin string

const (
	// OriginStaticScript marks calls found by scanning script text
	OriginStaticScript Origin = "static-script"
	// OriginDynamicCapture marks calls observed during a rendered session
	OriginDynamicCapture Origin = "dynamic-capture"
	// OriginSpecialFile marks entries derived from sitemap/robots/manifest probes
	OriginSpecialFile Origin = "special-file"
)

// Resource categories assigned to network-call candidates.
const (
	CategoryXHR        = "XHR"
	CategoryFetch      = "Fetch"
	CategoryDocument   = "Document"
	CategoryStylesheet = "Stylesheet"
	CategoryScript     = "Script"
	CategoryImage      = "Image"
	CategoryMedia      = "Media"
	CategoryFont       = "Font"
	CategorySocket     = "Socket"
	CategoryGraphQL    = "GraphQL"
	CategoryHiddenAPI  = "Hidden APIs"
	CategorySitemap    = "Sitemap"
	CategoryRobots     = "Robots"
	CategoryManifest   = "Manifest"
	CategoryOther      = "Other"
)

// Pseudo-methods used when a candidate is not a plain HTTP verb.
const (
	MethodGraphQL = "GRAPHQL"
	MethodWS      = "WS"
	MethodScript  = "SCRIPT"
)

// ContentCandidate is a discovered article/post-like link with a
// confidence score in [0,1].
type ContentCandidate struct {
	URL    string  `json:"url"`
	Title  string  `json:"title"`
	Signal Signal  `json:"signal"`
	Score  float64 `json:"score"`
}

// NetworkCall is a discovered HTTP/WebSocket/GraphQL call site or a
// live-captured network request.
type NetworkCall struct {
	URL      string  `json:"url"`
	Method   string  `json:"method"`
	Context  string  `json:"context,omitempty"`
	Category string  `json:"category"`
	Origin   Origin  `json:"origin"`
	Score    float64 `json:"score"`

	// Signature is the call-site signature that produced the candidate.
	// Empty for dynamic captures and special-file entries.
	Signature string `json:"signature,omitempty"`

	// DurationMs and SizeBytes are filled from resource timing data when a
	// rendered session correlates the entry. Zero when unknown.
	DurationMs float64 `json:"durationMs,omitempty"`
	SizeBytes  int64   `json:"sizeBytes,omitempty"`

	// decoded is set when the candidate came out of a base64 probe.
	decoded bool
}

// PageInfo carries rendered-session metadata. Only present when dynamic
// capture ran to completion.
type PageInfo struct {
	Title           string  `json:"title"`
	LoadTimeMs      float64 `json:"loadTimeMs"`
	JSHeapUsedBytes int64   `json:"jsHeapUsedBytes,omitempty"`
}

// ScriptSource is one unit of the script corpus. URL is empty for inline
// scripts.
type ScriptSource struct {
	URL  string
	Text string
}
