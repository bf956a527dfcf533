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

import "regexp"

// CallSiteSignature recognizes one JavaScript HTTP-call idiom. Signatures
// are plain data evaluated by a single scan loop; adding an idiom means
// adding an entry here, never a new scanning pass.
type CallSiteSignature struct {
	// ID names the signature; the mode table selects signatures by ID.
	ID string
	// Pattern matches one call site. Patterns are RE2 and therefore safe
	// from catastrophic backtracking.
	Pattern *regexp.Regexp
	// URLGroup is the capture group holding the endpoint string.
	// 0 means the signature has no URL capture and SynthesizePath applies.
	URLGroup int
	// MethodGroup is the capture group holding the HTTP method, 0 when the
	// method comes from the Method literal instead.
	MethodGroup int
	// Method is the literal method for signatures without a method
	// capture. Empty defaults to GET.
	Method string
	// SynthesizePath, for signatures with URLGroup 0, is resolved against
	// the page base to produce the candidate URL.
	SynthesizePath string
	// RefinedBy names a signature that supersedes this one when both
	// match at the same offset, so fetch-with-method wins over plain fetch.
	RefinedBy string
	// Category is the base category for candidates from this signature.
	Category string
}

var callSignatures = []*CallSiteSignature{
	{
		ID:          "fetch-method",
		Pattern:     regexp.MustCompile(`fetch\(\s*["'\x60]([^"'\x60\s)]+)["'\x60]\s*,\s*\{[^{}]*?\bmethod\s*:\s*["'\x60]([A-Za-z]+)["'\x60]`),
		URLGroup:    1,
		MethodGroup: 2,
		Category:    CategoryFetch,
	},
	{
		ID:        "fetch",
		Pattern:   regexp.MustCompile(`\bfetch\(\s*["'\x60]([^"'\x60\s)]+)["'\x60]`),
		URLGroup:  1,
		RefinedBy: "fetch-method",
		Category:  CategoryFetch,
	},
	{
		ID:       "lib-post",
		Pattern:  regexp.MustCompile(`(?:axios|\$|http|api|client)\.post\(\s*["'\x60]([^"'\x60\s)]+)["'\x60]`),
		URLGroup: 1,
		Method:   "POST",
		Category: CategoryXHR,
	},
	{
		ID:       "lib-get",
		Pattern:  regexp.MustCompile(`(?:axios|\$|http|api|client)\.get\(\s*["'\x60]([^"'\x60\s)]+)["'\x60]`),
		URLGroup: 1,
		Method:   "GET",
		Category: CategoryXHR,
	},
	{
		ID:          "xhr-open",
		Pattern:     regexp.MustCompile(`\bopen\(\s*["'\x60]([A-Za-z]+)["'\x60]\s*,\s*["'\x60]([^"'\x60\s)]+)["'\x60]`),
		URLGroup:    2,
		MethodGroup: 1,
		Category:    CategoryXHR,
	},
	{
		ID:       "websocket",
		Pattern:  regexp.MustCompile(`new\s+WebSocket\(\s*["'\x60](wss?://[^"'\x60\s)]+)["'\x60]`),
		URLGroup: 1,
		Method:   MethodWS,
		Category: CategorySocket,
	},
	{
		ID:       "ws-literal",
		Pattern:  regexp.MustCompile(`["'\x60](wss?://[^"'\x60\s]+)["'\x60]`),
		URLGroup: 1,
		Method:   MethodWS,
		Category: CategorySocket,
	},
	{
		ID:       "graphql-endpoint",
		Pattern:  regexp.MustCompile(`["'\x60]((?:https?://[^"'\x60\s]*)?/graphql(?:[/?#][^"'\x60\s]*)?)["'\x60]`),
		URLGroup: 1,
		Method:   MethodGraphQL,
		Category: CategoryGraphQL,
	},
	{
		ID:             "graphql-operation",
		Pattern:        regexp.MustCompile(`\b(?:query|mutation|subscription)\s+[A-Za-z_][A-Za-z0-9_]*\s*(?:\([^)]*\))?\s*\{`),
		SynthesizePath: "/graphql",
		Method:         MethodGraphQL,
		Category:       CategoryGraphQL,
	},
}

var signatureByID = func() map[string]*CallSiteSignature {
	m := make(map[string]*CallSiteSignature, len(callSignatures))
	for _, s := range callSignatures {
		m[s.ID] = s
	}
	return m
}()

// selectSignatures resolves a list of signature IDs to signature objects.
// A nil list selects the whole registry; an empty list selects nothing.
func selectSignatures(ids []string) []*CallSiteSignature {
	if ids == nil {
		return callSignatures
	}
	out := make([]*CallSiteSignature, 0, len(ids))
	for _, id := range ids {
		if s, ok := signatureByID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
