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
	"errors"
	"testing"
)

func TestModeForLookup(t *testing.T) {
	for _, name := range ModeNames() {
		m, err := ModeFor(name)
		if err != nil {
			t.Errorf("ModeFor(%q) failed: %v", name, err)
			continue
		}
		if m.Name != name {
			t.Errorf("ModeFor(%q).Name = %q", name, m.Name)
		}
	}

	if m, err := ModeFor(""); err != nil || !m.Content {
		t.Errorf("empty mode should default to posts, got %v, %v", m, err)
	}
	if m, err := ModeFor("POSTS"); err != nil || m.Name != "posts" {
		t.Errorf("mode lookup should be case-insensitive, got %v, %v", m, err)
	}

	_, err := ModeFor("bogus")
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestModeTableShape(t *testing.T) {
	full, _ := ModeFor("full")
	if !full.Dynamic {
		t.Error("full mode must run dynamic capture")
	}
	if full.Predicate != nil {
		t.Error("full mode must not filter")
	}

	all, _ := ModeFor("all")
	if all.Dynamic {
		t.Error("all mode must stay static")
	}
	if all.Predicate != nil {
		t.Error("all mode must not filter")
	}

	posts, _ := ModeFor("posts")
	if !posts.Content {
		t.Error("posts is a content mode")
	}

	xhr, _ := ModeFor("xhr")
	if xhr.Signatures == nil {
		t.Error("xhr mode must restrict signatures")
	}
	for _, id := range xhr.Signatures {
		if id == "fetch" || id == "fetch-method" {
			t.Error("xhr mode must not select fetch signatures")
		}
	}
}

func TestAPILike(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://ex.com/api/users", true},
		{"https://ex.com/v2/data", true},
		{"https://ex.com/graphql", true},
		{"https://ex.com/rest/items", true},
		{"https://ex.com/ajax/load", true},
		{"https://ex.com/about", false},
		{"https://ex.com/api/bundle.js", false},
		{"https://ex.com/v1/hero.png", false},
		{"https://ex.com/version", false},
	}
	for _, tt := range tests {
		if got := apiLike(tt.url); got != tt.want {
			t.Errorf("apiLike(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestStaticAsset(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://ex.com/app.js", true},
		{"https://ex.com/style.CSS", true},
		{"https://ex.com/img/logo.svg?v=2", true},
		{"https://ex.com/font.woff2", true},
		{"https://ex.com/api/users", false},
		{"https://ex.com/download", false},
	}
	for _, tt := range tests {
		if got := staticAsset(tt.url); got != tt.want {
			t.Errorf("staticAsset(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestClassifyCall(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		url    string
		method string
		want   string
	}{
		{name: "xhr plain", base: CategoryXHR, url: "https://ex.com/load", method: "GET", want: CategoryXHR},
		{name: "xhr api upgraded", base: CategoryXHR, url: "https://ex.com/api/load", method: "GET", want: CategoryHiddenAPI},
		{name: "fetch api upgraded", base: CategoryFetch, url: "https://ex.com/v3/x", method: "POST", want: CategoryHiddenAPI},
		{name: "socket untouched", base: CategorySocket, url: "wss://ex.com/api/live", method: MethodWS, want: CategorySocket},
		{name: "hidden demoted without api shape", base: CategoryHiddenAPI, url: "https://ex.com/plain", method: "GET", want: CategoryXHR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyCall(tt.base, tt.url, tt.method); got != tt.want {
				t.Errorf("classifyCall(%q, %q) = %q, want %q", tt.base, tt.url, got, tt.want)
			}
		})
	}
}

func TestClassifyDynamicResource(t *testing.T) {
	tests := []struct {
		resType string
		url     string
		method  string
		want    string
	}{
		{"XHR", "https://ex.com/load", "GET", CategoryXHR},
		{"XHR", "https://ex.com/api/load", "GET", CategoryHiddenAPI},
		{"Fetch", "https://ex.com/graphql", "POST", CategoryHiddenAPI},
		{"Document", "https://ex.com/", "GET", CategoryDocument},
		{"Stylesheet", "https://ex.com/a.css", "GET", CategoryStylesheet},
		{"Script", "https://ex.com/a.js", "GET", CategoryScript},
		{"Image", "https://ex.com/a.png", "GET", CategoryImage},
		{"Media", "https://ex.com/a.mp4", "GET", CategoryMedia},
		{"Font", "https://ex.com/a.woff2", "GET", CategoryFont},
		{"WebSocket", "wss://ex.com/live", MethodWS, CategorySocket},
		{"Other", "wss://ex.com/feed", "GET", CategorySocket},
		{"Other", "https://ex.com/api/x", "GET", CategoryHiddenAPI},
		{"Other", "https://ex.com/thing", "GET", CategoryOther},
	}
	for _, tt := range tests {
		if got := classifyDynamicResource(tt.resType, tt.url, tt.method); got != tt.want {
			t.Errorf("classifyDynamicResource(%q, %q) = %q, want %q", tt.resType, tt.url, got, tt.want)
		}
	}
}
