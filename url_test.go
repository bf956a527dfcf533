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
	"net/url"
	"testing"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain https", raw: "https://example.com/page", want: "https://example.com/page"},
		{name: "http allowed", raw: "http://example.com", want: "http://example.com/"},
		{name: "whitespace trimmed", raw: "  https://example.com/a  ", want: "https://example.com/a"},
		{name: "uppercase host normalized", raw: "https://EXAMPLE.com/Path", want: "https://example.com/Path"},
		{name: "empty", raw: "", wantErr: true},
		{name: "no scheme", raw: "example.com", wantErr: true},
		{name: "ftp rejected", raw: "ftp://example.com/file", wantErr: true},
		{name: "javascript rejected", raw: "javascript:alert(1)", wantErr: true},
		{name: "host missing", raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeTarget(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Fatalf("expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestResolveRef(t *testing.T) {
	base, _ := url.Parse("https://example.com/blog/index.html")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "absolute passthrough", ref: "https://other.com/api", want: "https://other.com/api"},
		{name: "root relative", ref: "/api/users", want: "https://example.com/api/users"},
		{name: "path relative", ref: "post/1", want: "https://example.com/blog/post/1"},
		{name: "websocket", ref: "wss://example.com/live", want: "wss://example.com/live"},
		{name: "fragment stripped", ref: "/page#section", want: "https://example.com/page"},
		{name: "fragment only", ref: "#top", want: ""},
		{name: "javascript skipped", ref: "javascript:void(0)", want: ""},
		{name: "mailto skipped", ref: "mailto:hi@example.com", want: ""},
		{name: "tel skipped", ref: "tel:+123456", want: ""},
		{name: "data skipped", ref: "data:text/plain,x", want: ""},
		{name: "empty", ref: "", want: ""},
		{name: "whitespace only", ref: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveRef(base, tt.ref); got != tt.want {
				t.Errorf("resolveRef(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
