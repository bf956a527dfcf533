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

// Package pagescope analyzes a single web page: given one URL and a mode
// it returns either ranked content candidates (posts, articles) found
// through independent structural signals, or ranked network-call
// candidates found by scanning the page's script code, optionally
// augmented by live capture during a rendered browser session.
package pagescope

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/agentberlin/pagescope/debug"
)

// Request is one analysis request.
type Request struct {
	// URL is the target page.
	URL string
	// Mode selects the analysis mode. Empty selects "posts".
	Mode string
	// Proxy optionally overrides the configured proxy for this request.
	Proxy string
}

// Result is the outcome of one analysis. Content is populated for
// content modes, Calls for network modes. PageInfo is present only when
// a rendered session ran to completion.
type Result struct {
	AnalysisID string             `json:"analysisId"`
	URL        string             `json:"url"`
	Mode       string             `json:"mode"`
	Content    []ContentCandidate `json:"content,omitempty"`
	Calls      []NetworkCall      `json:"calls,omitempty"`
	PageInfo   *PageInfo          `json:"pageInfo,omitempty"`
}

// Analyzer runs single-page analyses. An Analyzer is safe for concurrent
// use: no state is shared between requests, every Analyze call owns its
// fetcher, registry and, when needed, browser session.
type Analyzer struct {
	cfg *Config
}

// New creates an Analyzer. The user config is merged over defaults and
// PAGESCOPE_-prefixed environment overrides are applied on top.
func New(userCfg *Config) (*Analyzer, error) {
	cfg := mergeConfig(userCfg)
	cfg.parseSettingsFromEnv()
	if cfg.Debugger != nil {
		if err := cfg.Debugger.Init(); err != nil {
			return nil, err
		}
	}
	return &Analyzer{cfg: cfg}, nil
}

// Analyze runs one analysis under the configured deadline. The whole
// operation is aborted when the deadline elapses; no partial results are
// returned.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	mode, err := ModeFor(req.Mode)
	if err != nil {
		return nil, err
	}
	base, err := normalizeTarget(req.URL)
	if err != nil {
		return nil, err
	}

	deadline := a.cfg.Deadline
	if mode.Dynamic {
		deadline = a.cfg.RenderDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cfg := a.cfg
	if req.Proxy != "" {
		c := *a.cfg
		c.Proxy = req.Proxy
		cfg = &c
	}
	f, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		AnalysisID: uuid.NewString(),
		URL:        base.String(),
		Mode:       mode.Name,
	}
	a.event(result.AnalysisID, "started", map[string]string{
		"url":  result.URL,
		"mode": mode.Name,
	})

	resp, err := f.fetchPage(ctx, base.String())
	if err != nil {
		return nil, a.finish(result.AnalysisID, mapDeadline(ctx, err))
	}
	fetchedValues := map[string]string{
		"status":    strconv.Itoa(resp.StatusCode),
		"elapsedMs": strconv.FormatInt(resp.Elapsed.Milliseconds(), 10),
	}
	if resp.Trace != nil {
		fetchedValues["firstByteMs"] = strconv.FormatInt(resp.Trace.FirstByteDuration.Milliseconds(), 10)
	}
	a.event(result.AnalysisID, "fetched", fetchedValues)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, a.finish(result.AnalysisID, err)
	}

	reg := NewRegistry()

	if mode.Content {
		newContentExtractor(base).Extract(doc, reg)
		if cfg.ExpandFeeds {
			newFeedExpander(f, cfg.MaxFeedItems).Expand(ctx, reg)
		}
		result.Content = finalizeContent(reg)
		if err := a.finish(result.AnalysisID, ctx.Err()); err != nil {
			return nil, err
		}
		a.event(result.AnalysisID, "completed", map[string]string{
			"found": strconv.Itoa(len(result.Content)),
		})
		return result, nil
	}

	corpus := newCorpusBuilder(f, cfg).Build(ctx, doc, base)
	a.event(result.AnalysisID, "corpus", map[string]string{
		"sources":  strconv.Itoa(len(corpus.Sources)),
		"external": strconv.Itoa(len(corpus.ExternalURLs)),
	})

	scanner := newCallScanner(base, selectSignatures(mode.Signatures))
	scanner.Scan(corpus, reg)
	if mode.ProbeB64 {
		scanner.ProbeBase64(corpus, reg)
	}

	if mode.ScriptLoads {
		for _, scriptURL := range corpus.ExternalURLs {
			call := NetworkCall{
				URL:      scriptURL,
				Method:   MethodScript,
				Context:  "external script load",
				Category: CategoryScript,
				Origin:   OriginStaticScript,
			}
			call.Score = scoreCall(&call)
			reg.AddCall(call)
		}
	}

	if mode.Special {
		newSpecialProber(f).Probe(ctx, base, reg)
	}

	if mode.Dynamic {
		info, captureErr := newDynamicCapturer(*cfg.Render, cfg.UserAgent, cfg.Proxy).
			Capture(ctx, base.String(), reg)
		if captureErr != nil {
			// Static results stand on their own when the session fails.
			a.event(result.AnalysisID, "capture-failed", map[string]string{
				"error": captureErr.Error(),
			})
		} else {
			result.PageInfo = info
		}
	}

	result.Calls = finalizeCalls(reg, mode)
	if err := a.finish(result.AnalysisID, ctx.Err()); err != nil {
		return nil, err
	}
	a.event(result.AnalysisID, "completed", map[string]string{
		"count": strconv.Itoa(len(result.Calls)),
	})
	return result, nil
}

func (a *Analyzer) event(analysisID, typ string, values map[string]string) {
	if a.cfg.Debugger == nil {
		return
	}
	a.cfg.Debugger.Event(&debug.Event{
		Type:       typ,
		AnalysisID: analysisID,
		Values:     values,
	})
}

// finish maps a trailing context error to the deadline sentinel and emits
// a failure event when the analysis did not complete.
func (a *Analyzer) finish(analysisID string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrDeadline
	}
	a.event(analysisID, "failed", map[string]string{"error": err.Error()})
	return err
}

// mapDeadline rewrites context expiry into the deadline sentinel while
// leaving other failures, upstream errors included, untouched.
func mapDeadline(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrDeadline
	}
	return err
}
