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
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func testBuilder(t *testing.T, maxScripts int) (*corpusBuilder, *Config) {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.MaxScripts = maxScripts
	cfg.ScriptStagger = time.Millisecond
	f, err := newFetcher(cfg)
	if err != nil {
		t.Fatalf("newFetcher: %v", err)
	}
	return newCorpusBuilder(f, cfg), cfg
}

func TestCorpusCollectsInlineAndExternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "// body of %s", r.URL.Path)
	}))
	defer srv.Close()

	html := fmt.Sprintf(`<html><head>
		<script>var inline1 = fetch("/api/a");</script>
		<script src="%s/one.js"></script>
		<script src="/two.js"></script>
		<script>   </script>
	</head><body></body></html>`, srv.URL)

	base, _ := url.Parse(srv.URL + "/")
	builder, _ := testBuilder(t, 8)
	corpus := builder.Build(context.Background(), docFromHTML(t, html), base)

	if len(corpus.ExternalURLs) != 2 {
		t.Fatalf("external URLs = %v, want 2", corpus.ExternalURLs)
	}
	// Inline first, externals after, blank inline dropped.
	if len(corpus.Sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(corpus.Sources))
	}
	if corpus.Sources[0].URL != "" || corpus.Sources[0].Text == "" {
		t.Errorf("first source should be the inline script: %+v", corpus.Sources[0])
	}
	if corpus.Sources[1].Text != "// body of /one.js" {
		t.Errorf("external body = %q", corpus.Sources[1].Text)
	}
	if corpus.Sources[2].Text != "// body of /two.js" {
		t.Errorf("external body = %q", corpus.Sources[2].Text)
	}
}

func TestCorpusCapsExternalFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "// js")
	}))
	defer srv.Close()

	html := "<html><head>"
	for i := 0; i < 10; i++ {
		html += fmt.Sprintf(`<script src="/s%d.js"></script>`, i)
	}
	html += "</head><body></body></html>"

	base, _ := url.Parse(srv.URL + "/")
	builder, _ := testBuilder(t, 4)
	corpus := builder.Build(context.Background(), docFromHTML(t, html), base)

	// All URLs are listed, only the capped prefix is fetched.
	if len(corpus.ExternalURLs) != 10 {
		t.Errorf("external URLs = %d, want 10", len(corpus.ExternalURLs))
	}
	if len(corpus.Sources) != 4 {
		t.Errorf("fetched sources = %d, want 4", len(corpus.Sources))
	}
}

func TestCorpusFailureIsolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.js" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "// good")
	}))
	defer srv.Close()

	html := `<html><head>
		<script src="/bad.js"></script>
		<script src="/good.js"></script>
	</head><body></body></html>`

	base, _ := url.Parse(srv.URL + "/")
	builder, _ := testBuilder(t, 8)
	corpus := builder.Build(context.Background(), docFromHTML(t, html), base)

	if len(corpus.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(corpus.Sources))
	}
	// Positional results: the failed fetch leaves an empty body in place.
	if corpus.Sources[0].Text != "" {
		t.Errorf("failed fetch should yield empty body, got %q", corpus.Sources[0].Text)
	}
	if corpus.Sources[1].Text != "// good" {
		t.Errorf("good fetch body = %q", corpus.Sources[1].Text)
	}
}
