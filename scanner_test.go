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
	"strings"
	"testing"
)

func scanText(t *testing.T, text string, sigIDs []string) []NetworkCall {
	t.Helper()
	base, _ := url.Parse("https://example.com/")
	reg := NewRegistry()
	scanner := newCallScanner(base, selectSignatures(sigIDs))
	scanner.Scan(&scriptCorpus{Sources: []ScriptSource{{Text: text}}}, reg)
	return reg.Calls()
}

func findCall(calls []NetworkCall, url string) *NetworkCall {
	for i := range calls {
		if calls[i].URL == url {
			return &calls[i]
		}
	}
	return nil
}

func TestScanFetchWithMethod(t *testing.T) {
	calls := scanText(t, `fetch("/api/users", {method:"POST"})`, nil)

	got := findCall(calls, "https://example.com/api/users")
	if got == nil {
		t.Fatalf("no candidate for /api/users, calls: %v", calls)
	}
	if got.Method != "POST" {
		t.Errorf("method = %q, want POST", got.Method)
	}
	if got.Origin != OriginStaticScript {
		t.Errorf("origin = %q, want static-script", got.Origin)
	}
	// The plain fetch signature must stay quiet when the method variant
	// matched at the same call site.
	for _, c := range calls {
		if c.URL == got.URL && c.Method == "GET" {
			t.Error("plain fetch signature also fired on the same call site")
		}
	}
}

func TestScanFetchDefaultsToGet(t *testing.T) {
	calls := scanText(t, `fetch("/api/items")`, nil)

	got := findCall(calls, "https://example.com/api/items")
	if got == nil {
		t.Fatal("no candidate for /api/items")
	}
	if got.Method != "GET" {
		t.Errorf("method = %q, want GET", got.Method)
	}
	if got.Signature != "fetch" {
		t.Errorf("signature = %q, want fetch", got.Signature)
	}
}

func TestScanXHROpen(t *testing.T) {
	calls := scanText(t, `var x=new XMLHttpRequest();x.open("GET","/internal/v2/data");x.send();`, nil)

	got := findCall(calls, "https://example.com/internal/v2/data")
	if got == nil {
		t.Fatal("no candidate for /internal/v2/data")
	}
	if got.Method != "GET" {
		t.Errorf("method = %q, want GET", got.Method)
	}
	if got.Category != CategoryHiddenAPI {
		t.Errorf("category = %q, want %q", got.Category, CategoryHiddenAPI)
	}
	// API-shaped URL elevates the score above the static base.
	if got.Score <= scoreStatic {
		t.Errorf("score = %v, want > %v", got.Score, scoreStatic)
	}
}

func TestScanLibraryCalls(t *testing.T) {
	text := `axios.post("/api/orders", body); $.get("/api/orders")`
	calls := scanText(t, text, nil)

	post := false
	get := false
	for _, c := range calls {
		if c.URL != "https://example.com/api/orders" {
			continue
		}
		switch c.Method {
		case "POST":
			post = true
		case "GET":
			get = true
		}
	}
	if !post || !get {
		t.Errorf("expected POST and GET candidates, got %v", calls)
	}
}

func TestScanWebSocket(t *testing.T) {
	calls := scanText(t, `const s = new WebSocket("wss://example.com/live")`, nil)

	got := findCall(calls, "wss://example.com/live")
	if got == nil {
		t.Fatal("no websocket candidate")
	}
	if got.Method != MethodWS {
		t.Errorf("method = %q, want %q", got.Method, MethodWS)
	}
	if got.Category != CategorySocket {
		t.Errorf("category = %q, want %q", got.Category, CategorySocket)
	}
}

func TestScanGraphQLEndpoint(t *testing.T) {
	calls := scanText(t, `const endpoint = "/graphql"; post(endpoint, q)`, nil)

	got := findCall(calls, "https://example.com/graphql")
	if got == nil {
		t.Fatal("no graphql candidate")
	}
	if got.Category != CategoryGraphQL {
		t.Errorf("category = %q, want %q", got.Category, CategoryGraphQL)
	}
}

func TestScanGraphQLEndpointSegmentBoundary(t *testing.T) {
	calls := scanText(t,
		`const icon = "https://x.com/assets/graphql.png"; const q = "/graphql?op=GetUser";`,
		[]string{"graphql-endpoint"})

	if got := findCall(calls, "https://x.com/assets/graphql.png"); got != nil {
		t.Errorf("asset containing the word graphql classified as endpoint: %+v", got)
	}
	if findCall(calls, "https://example.com/graphql?op=GetUser") == nil {
		t.Error("graphql endpoint with query string not matched")
	}
}

func TestScanGraphQLOperationSynthesized(t *testing.T) {
	calls := scanText(t, "client.request(`query GetUser($id: ID!) { user(id: $id) { name } }`)",
		[]string{"graphql-operation"})

	got := findCall(calls, "https://example.com/graphql")
	if got == nil {
		t.Fatal("operation literal did not synthesize an endpoint candidate")
	}
	if got.Method != MethodGraphQL {
		t.Errorf("method = %q, want %q", got.Method, MethodGraphQL)
	}
}

func TestScanSignatureSubsetExcludesOthers(t *testing.T) {
	// An xhr-restricted scan must not pick up fetch call sites.
	calls := scanText(t, `fetch("/api/users", {method:"POST"})`,
		[]string{"xhr-open", "lib-post", "lib-get"})

	if len(calls) != 0 {
		t.Errorf("expected no candidates, got %v", calls)
	}
}

func TestScanMalformedURLSkipped(t *testing.T) {
	calls := scanText(t, `fetch("javascript:void(0)"); fetch("#anchor")`, nil)
	if len(calls) != 0 {
		t.Errorf("expected no candidates for unresolvable refs, got %v", calls)
	}
}

func TestScanContextWindow(t *testing.T) {
	pad := strings.Repeat("x", 200)
	text := pad + ` fetch("/api/ctx") ` + pad
	calls := scanText(t, text, nil)

	got := findCall(calls, "https://example.com/api/ctx")
	if got == nil {
		t.Fatal("no candidate")
	}
	if got.Context == "" {
		t.Fatal("context window empty")
	}
	if !strings.Contains(got.Context, `fetch("/api/ctx")`) {
		t.Errorf("context %q does not contain the match", got.Context)
	}
	if len(got.Context) > len(`fetch("/api/ctx")`)+2*contextWindow+2 {
		t.Errorf("context window too large: %d bytes", len(got.Context))
	}
}

func TestProbeBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("/internal/api/secret-endpoint"))
	text := `var target = atob("` + encoded + `");`

	base, _ := url.Parse("https://example.com/")
	reg := NewRegistry()
	scanner := newCallScanner(base, nil)
	scanner.ProbeBase64(&scriptCorpus{Sources: []ScriptSource{{Text: text}}}, reg)

	got := findCall(reg.Calls(), "https://example.com/internal/api/secret-endpoint")
	if got == nil {
		t.Fatalf("decoded endpoint not registered, calls: %v", reg.Calls())
	}
	if got.Score <= scoreStatic {
		t.Errorf("decoded candidate score = %v, want > %v", got.Score, scoreStatic)
	}
}

func TestProbeBase64IgnoresBinary(t *testing.T) {
	// Long base64 that decodes to binary garbage must not produce candidates.
	encoded := base64.StdEncoding.EncodeToString([]byte{0x00, 0x01, 0xFF, 0xFE, 0x80, 0x81, 0x90, 0x99, 0xA0, 0xB0, 0xC0, 0xD0, 0xE0, 0xF0, 0x11, 0x22})
	text := `var blob = "` + encoded + `";`

	base, _ := url.Parse("https://example.com/")
	reg := NewRegistry()
	scanner := newCallScanner(base, nil)
	scanner.ProbeBase64(&scriptCorpus{Sources: []ScriptSource{{Text: text}}}, reg)

	if reg.CallLen() != 0 {
		t.Errorf("expected no candidates, got %v", reg.Calls())
	}
}
