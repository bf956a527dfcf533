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
	"github.com/cespare/xxhash/v2"
)

// Registry accumulates candidates for one analysis and enforces
// at-most-one entry per fingerprint. On collision the higher-scoring
// candidate wins. A Registry is owned by a single analysis and discarded
// with it; nothing survives across requests.
type Registry struct {
	content map[uint64]ContentCandidate
	calls   map[uint64]NetworkCall
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		content: make(map[uint64]ContentCandidate),
		calls:   make(map[uint64]NetworkCall),
	}
}

// contentFingerprint is the dedup key for content candidates: the URL.
func contentFingerprint(url string) uint64 {
	return xxhash.Sum64String(url)
}

// callFingerprint is the dedup key for network calls: URL + method + origin.
func callFingerprint(url, method string, origin Origin) uint64 {
	d := xxhash.New()
	d.WriteString(url)
	d.Write([]byte{0})
	d.WriteString(method)
	d.Write([]byte{0})
	d.WriteString(string(origin))
	return d.Sum64()
}

// AddContent registers a content candidate. An existing entry under the
// same URL is kept when it scores at least as high.
func (r *Registry) AddContent(c ContentCandidate) {
	if c.URL == "" {
		return
	}
	fp := contentFingerprint(c.URL)
	if prev, ok := r.content[fp]; ok && prev.Score >= c.Score {
		return
	}
	r.propagateContentTitle(&c)
	r.content[fp] = c
}

// propagateContentTitle keeps the previous title when a higher-scoring
// detector found the same URL without one.
func (r *Registry) propagateContentTitle(c *ContentCandidate) {
	if c.Title != "" {
		return
	}
	if prev, ok := r.content[contentFingerprint(c.URL)]; ok {
		c.Title = prev.Title
	}
}

// AddCall registers a network-call candidate, keeping the higher score
// on fingerprint collision.
func (r *Registry) AddCall(c NetworkCall) {
	if c.URL == "" {
		return
	}
	fp := callFingerprint(c.URL, c.Method, c.Origin)
	if prev, ok := r.calls[fp]; ok {
		if prev.Score >= c.Score {
			// Still merge timing data discovered later.
			if prev.DurationMs == 0 && c.DurationMs != 0 {
				prev.DurationMs = c.DurationMs
				prev.SizeBytes = c.SizeBytes
				r.calls[fp] = prev
			}
			return
		}
		if c.DurationMs == 0 && prev.DurationMs != 0 {
			c.DurationMs = prev.DurationMs
			c.SizeBytes = prev.SizeBytes
		}
	}
	r.calls[fp] = c
}

// ContentItems returns all registered content candidates, unordered.
func (r *Registry) ContentItems() []ContentCandidate {
	items := make([]ContentCandidate, 0, len(r.content))
	for _, c := range r.content {
		items = append(items, c)
	}
	return items
}

// Calls returns all registered network-call candidates, unordered.
func (r *Registry) Calls() []NetworkCall {
	items := make([]NetworkCall, 0, len(r.calls))
	for _, c := range r.calls {
		items = append(items, c)
	}
	return items
}

// ContentLen reports the number of registered content candidates.
func (r *Registry) ContentLen() int { return len(r.content) }

// CallLen reports the number of registered network-call candidates.
func (r *Registry) CallLen() int { return len(r.calls) }
