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

import "sort"

// Origin base scores. Live-observed calls outrank statically scanned
// ones; well-known special files outrank both.
const (
	scoreStatic  = 0.5
	scoreDynamic = 0.7
	scoreSpecial = 0.9

	boostAPIShape = 0.2
	boostMutating = 0.15
	boostDecoded  = 0.1
)

// scoreCall computes a network-call candidate's final score from its
// origin, URL shape and method. Scores are clamped to [0, 1].
func scoreCall(c *NetworkCall) float64 {
	var s float64
	switch c.Origin {
	case OriginDynamicCapture:
		s = scoreDynamic
	case OriginSpecialFile:
		s = scoreSpecial
	default:
		s = scoreStatic
	}
	if apiLike(c.URL) {
		s += boostAPIShape
	}
	switch c.Method {
	case "POST", "PUT", "DELETE", "PATCH":
		s += boostMutating
	}
	if c.decoded {
		s += boostDecoded
	}
	if s > 1 {
		s = 1
	}
	if s < 0 {
		s = 0
	}
	return s
}

// finalizeCalls applies the mode predicate, orders candidates by
// descending score with URL then method as deterministic tie-breaks, and
// truncates to the network-call cap.
func finalizeCalls(reg *Registry, mode *Mode) []NetworkCall {
	calls := reg.Calls()
	out := make([]NetworkCall, 0, len(calls))
	for _, c := range calls {
		if mode.Predicate != nil && !mode.Predicate(&c) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].URL != out[j].URL {
			return out[i].URL < out[j].URL
		}
		return out[i].Method < out[j].Method
	})
	if len(out) > maxNetworkCalls {
		out = out[:maxNetworkCalls]
	}
	return out
}

// finalizeContent orders content candidates by descending score with URL
// as the tie-break and truncates to the content cap.
func finalizeContent(reg *Registry) []ContentCandidate {
	items := reg.ContentItems()
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].URL < items[j].URL
	})
	if len(items) > maxContentItems {
		items = items[:maxContentItems]
	}
	return items
}
