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
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

const contextWindow = 60

// callScanner runs the signature registry over a script corpus and feeds
// matches into the shared registry. One scanner instance is built per
// analysis since it carries the page base URL.
type callScanner struct {
	base       *url.URL
	signatures []*CallSiteSignature
}

func newCallScanner(base *url.URL, signatures []*CallSiteSignature) *callScanner {
	return &callScanner{base: base, signatures: signatures}
}

// Scan matches every selected signature against every corpus source and
// records the resulting call candidates. Sources that failed to fetch are
// empty strings and fall through harmlessly.
func (s *callScanner) Scan(corpus *scriptCorpus, reg *Registry) {
	for _, src := range corpus.Sources {
		if src.Text == "" {
			continue
		}
		s.scanSource(src.Text, reg)
	}
}

func (s *callScanner) scanSource(text string, reg *Registry) {
	for _, sig := range s.signatures {
		pos := 0
		for pos < len(text) {
			loc := sig.Pattern.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				break
			}
			start, end := pos+loc[0], pos+loc[1]
			if !s.refinedMatch(sig, text, start) {
				s.emit(sig, text, loc, pos, start, end, reg)
			}
			pos = start + 1
		}
	}
}

// refinedMatch reports whether a more specific signature matches at the
// same offset, in which case the broader one stays quiet. RE2 has no
// lookahead, so the suppression lives here instead of in the patterns.
func (s *callScanner) refinedMatch(sig *CallSiteSignature, text string, start int) bool {
	if sig.RefinedBy == "" {
		return false
	}
	refined, ok := signatureByID[sig.RefinedBy]
	if !ok {
		return false
	}
	loc := refined.Pattern.FindStringIndex(text[start:])
	return loc != nil && loc[0] == 0
}

func (s *callScanner) emit(sig *CallSiteSignature, text string, loc []int, pos, start, end int, reg *Registry) {
	var raw string
	switch {
	case sig.URLGroup > 0:
		g := sig.URLGroup * 2
		if g+1 >= len(loc) || loc[g] < 0 {
			return
		}
		raw = text[pos+loc[g] : pos+loc[g+1]]
	case sig.SynthesizePath != "":
		raw = sig.SynthesizePath
	default:
		return
	}

	method := sig.Method
	if sig.MethodGroup > 0 {
		g := sig.MethodGroup * 2
		if g+1 < len(loc) && loc[g] >= 0 {
			method = strings.ToUpper(text[pos+loc[g] : pos+loc[g+1]])
		}
	}
	if method == "" {
		method = "GET"
	}

	resolved := resolveRef(s.base, raw)
	if resolved == "" {
		return
	}

	call := NetworkCall{
		URL:       resolved,
		Method:    method,
		Context:   contextSnippet(text, start, end),
		Origin:    OriginStaticScript,
		Signature: sig.ID,
	}
	call.Category = classifyCall(sig.Category, resolved, method)
	call.Score = scoreCall(&call)
	reg.AddCall(call)
}

// base64Literal matches quoted strings long enough to plausibly hide an
// encoded endpoint. Padding is optional since some encoders strip it.
var base64Literal = regexp.MustCompile(`["'\x60]([A-Za-z0-9+/]{16,}={0,2})["'\x60]`)

// ProbeBase64 decodes long base64-looking string literals and records any
// that turn out to be URLs or absolute paths. Decoded provenance is kept
// on the candidate so ranking can reward it.
func (s *callScanner) ProbeBase64(corpus *scriptCorpus, reg *Registry) {
	for _, src := range corpus.Sources {
		if src.Text != "" {
			s.probeBase64(src.Text, reg)
		}
	}
}

func (s *callScanner) probeBase64(text string, reg *Registry) {
	for _, m := range base64Literal.FindAllStringSubmatchIndex(text, -1) {
		literal := text[m[2]:m[3]]
		decoded, err := base64.StdEncoding.DecodeString(literal)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(literal)
			if err != nil {
				continue
			}
		}
		str := string(decoded)
		if !printable(str) {
			continue
		}
		if !strings.HasPrefix(str, "http://") && !strings.HasPrefix(str, "https://") && !strings.HasPrefix(str, "/") {
			continue
		}
		resolved := resolveRef(s.base, str)
		if resolved == "" {
			continue
		}
		call := NetworkCall{
			URL:       resolved,
			Method:    "GET",
			Context:   contextSnippet(text, m[0], m[1]),
			Origin:    OriginStaticScript,
			Signature: "base64-literal",
			decoded:   true,
		}
		call.Category = classifyCall(CategoryHiddenAPI, resolved, "GET")
		call.Score = scoreCall(&call)
		reg.AddCall(call)
	}
}

func printable(s string) bool {
	for _, r := range s {
		if r == unicode.ReplacementChar || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
			return false
		}
	}
	return s != ""
}

// contextSnippet returns the match surrounded by up to contextWindow bytes
// on each side, cut at rune boundaries and collapsed to single spaces.
func contextSnippet(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !utf8Start(text[lo]) {
		lo--
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8Start(text[hi]) {
		hi++
	}
	return strings.Join(strings.Fields(text[lo:hi]), " ")
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }
