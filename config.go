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
	"os"
	"strconv"
	"time"

	"github.com/agentberlin/pagescope/debug"
)

// Output caps per mode family.
const (
	maxContentItems = 200
	maxNetworkCalls = 120
)

// RenderConfig controls the dynamic capture session run with headless Chrome.
type RenderConfig struct {
	// InitialWaitMs is the wait after navigation before capture settling
	// starts. This allows JavaScript frameworks to hydrate and fire their
	// first requests.
	// Default: 1500ms
	InitialWaitMs int
	// QuietMs is the length of the quiet period with no new network
	// activity after which the session counts as settled.
	// Default: 1500ms
	QuietMs int
	// MaxCaptureMs is the hard cap on the capture phase, settled or not.
	// Default: 10000ms
	MaxCaptureMs int
	// CollectMemory reads performance.memory into PageInfo when available.
	// Chrome-only API, best effort.
	CollectMemory bool
}

// Config contains all configuration options for an Analyzer.
type Config struct {
	// UserAgent is the User-Agent string used by HTTP requests
	UserAgent string
	// MaxBodySize is the limit of the retrieved response body in bytes.
	// 0 means unlimited.
	// The default value for MaxBodySize is 10MB (10 * 1024 * 1024 bytes).
	MaxBodySize int
	// DetectCharset can enable character encoding detection for non-utf8
	// response bodies without explicit charset declaration. This feature
	// uses https://github.com/saintfish/chardet
	DetectCharset bool
	// FetchRetries is the number of attempts for the top-level page fetch.
	// Default: 3
	FetchRetries int
	// RetryBackoff is the base backoff between page fetch attempts,
	// doubled after each failure.
	// Default: 250ms
	RetryBackoff time.Duration
	// Deadline bounds a whole analysis. When it elapses the in-flight
	// operation is aborted and the request fails with ErrDeadline.
	// Default: 60s
	Deadline time.Duration
	// RenderDeadline replaces Deadline for modes that run a rendered
	// session.
	// Default: 90s
	RenderDeadline time.Duration
	// MaxScripts caps how many external script files are fetched into the
	// corpus. Inline scripts are always collected.
	// Default: 8
	MaxScripts int
	// ScriptBatchSize is the number of concurrent script downloads.
	// Default: 3
	ScriptBatchSize int
	// ScriptStagger is the start delay between downloads inside a batch,
	// bounding the burst rate against the origin.
	// Default: 150ms
	ScriptStagger time.Duration
	// ScriptTimeout bounds each individual script download. A timed-out
	// download yields an empty source, never a failed analysis.
	// Default: 5s
	ScriptTimeout time.Duration
	// ExpandFeeds fetches and parses feeds discovered by the feed detector
	// and registers their entries as content candidates.
	ExpandFeeds bool
	// MaxFeedItems caps the entries registered per expanded feed.
	// Default: 20
	MaxFeedItems int
	// Proxy is an optional proxy URL applied to page, script and special
	// file fetches, and to the rendered session.
	Proxy string
	// Render contains configuration for the dynamic capture session
	Render *RenderConfig
	// Debugger receives pipeline events
	Debugger debug.Debugger
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		UserAgent:       "pagescope/1.0 (+https://agentberlin.ai)",
		MaxBodySize:     10 * 1024 * 1024, // 10MB
		DetectCharset:   false,
		FetchRetries:    3,
		RetryBackoff:    250 * time.Millisecond,
		Deadline:        60 * time.Second,
		RenderDeadline:  90 * time.Second,
		MaxScripts:      8,
		ScriptBatchSize: 3,
		ScriptStagger:   150 * time.Millisecond,
		ScriptTimeout:   5 * time.Second,
		MaxFeedItems:    20,
		Render: &RenderConfig{
			InitialWaitMs: 1500,
			QuietMs:       1500,
			MaxCaptureMs:  10000,
			CollectMemory: true,
		},
	}
}

// mergeConfig merges the user config into the defaults. User values take
// precedence for non-zero fields.
func mergeConfig(user *Config) *Config {
	cfg := NewDefaultConfig()
	if user == nil {
		return cfg
	}
	if user.UserAgent != "" {
		cfg.UserAgent = user.UserAgent
	}
	// MaxBodySize: always use the user's value, 0 means unlimited
	cfg.MaxBodySize = user.MaxBodySize
	if user.DetectCharset {
		cfg.DetectCharset = true
	}
	if user.FetchRetries != 0 {
		cfg.FetchRetries = user.FetchRetries
	}
	if user.RetryBackoff != 0 {
		cfg.RetryBackoff = user.RetryBackoff
	}
	if user.Deadline != 0 {
		cfg.Deadline = user.Deadline
	}
	if user.RenderDeadline != 0 {
		cfg.RenderDeadline = user.RenderDeadline
	}
	if user.MaxScripts != 0 {
		cfg.MaxScripts = user.MaxScripts
	}
	if user.ScriptBatchSize != 0 {
		cfg.ScriptBatchSize = user.ScriptBatchSize
	}
	if user.ScriptStagger != 0 {
		cfg.ScriptStagger = user.ScriptStagger
	}
	if user.ScriptTimeout != 0 {
		cfg.ScriptTimeout = user.ScriptTimeout
	}
	if user.ExpandFeeds {
		cfg.ExpandFeeds = true
	}
	if user.MaxFeedItems != 0 {
		cfg.MaxFeedItems = user.MaxFeedItems
	}
	if user.Proxy != "" {
		cfg.Proxy = user.Proxy
	}
	if user.Render != nil {
		cfg.Render = user.Render
	}
	if user.Debugger != nil {
		cfg.Debugger = user.Debugger
	}
	return cfg
}

var envMap = map[string]func(*Config, string){
	"USER_AGENT": func(c *Config, val string) {
		c.UserAgent = val
	},
	"MAX_BODY_SIZE": func(c *Config, val string) {
		size, err := strconv.Atoi(val)
		if err == nil {
			c.MaxBodySize = size
		}
	},
	"MAX_SCRIPTS": func(c *Config, val string) {
		n, err := strconv.Atoi(val)
		if err == nil {
			c.MaxScripts = n
		}
	},
	"DETECT_CHARSET": func(c *Config, val string) {
		c.DetectCharset = isYesString(val)
	},
	"EXPAND_FEEDS": func(c *Config, val string) {
		c.ExpandFeeds = isYesString(val)
	},
}

// parseSettingsFromEnv applies PAGESCOPE_-prefixed environment overrides.
func (c *Config) parseSettingsFromEnv() {
	for k, f := range envMap {
		if v, ok := os.LookupEnv("PAGESCOPE_" + k); ok {
			f(c, v)
		}
	}
}

func isYesString(s string) bool {
	switch s {
	case "1", "y", "yes", "true":
		return true
	}
	return false
}
