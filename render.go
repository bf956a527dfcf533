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
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// capturedResource is one network response observed during the rendered
// session, before classification.
type capturedResource struct {
	url          string
	method       string
	resourceType string
}

// resourceTiming mirrors the fields pulled from the page's resource
// timing entries for correlation.
type resourceTiming struct {
	Name         string  `json:"name"`
	Duration     float64 `json:"duration"`
	TransferSize float64 `json:"transferSize"`
}

// dynamicCapturer drives one headless browser session per call. Sessions
// are never pooled or shared across requests; every Capture builds its
// own allocator and tears it down on return.
// NOTE: each browser context consumes ~100-200MB RAM, so concurrency is
// bounded by whoever calls us, not here.
type dynamicCapturer struct {
	cfg       RenderConfig
	userAgent string
	proxy     string
}

func newDynamicCapturer(cfg RenderConfig, userAgent, proxy string) *dynamicCapturer {
	return &dynamicCapturer{cfg: cfg, userAgent: userAgent, proxy: proxy}
}

// Capture navigates the target, records every response and socket open
// until network activity settles, correlates resource timing, and
// registers everything as dynamically observed candidates. The returned
// PageInfo is nil when the session could not complete.
func (d *dynamicCapturer) Capture(ctx context.Context, target string, reg *Registry) (*PageInfo, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(d.userAgent),
	)
	if d.proxy != "" {
		opts = append(opts, chromedp.ProxyServer(d.proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var (
		mu           sync.Mutex
		resources    []capturedResource
		methods      = make(map[network.RequestID]string)
		lastActivity = time.Now()
	)

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		mu.Lock()
		defer mu.Unlock()
		lastActivity = time.Now()
		switch ev := ev.(type) {
		case *network.EventRequestWillBeSent:
			methods[ev.RequestID] = ev.Request.Method
		case *network.EventResponseReceived:
			resources = append(resources, capturedResource{
				url:          ev.Response.URL,
				method:       methods[ev.RequestID],
				resourceType: ev.Type.String(),
			})
		case *network.EventWebSocketCreated:
			resources = append(resources, capturedResource{
				url:          ev.URL,
				method:       MethodWS,
				resourceType: "WebSocket",
			})
		}
	})

	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(time.Duration(d.cfg.InitialWaitMs)*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("rendered session failed: %w", err)
	}

	d.waitSettled(tabCtx, &mu, &lastActivity)

	var (
		title    string
		timings  []resourceTiming
		loadMs   float64
		heapUsed int64
	)
	err = chromedp.Run(tabCtx,
		chromedp.Title(&title),
		chromedp.Evaluate(
			`performance.getEntriesByType('resource').map(e => ({name: e.name, duration: e.duration, transferSize: e.transferSize}))`,
			&timings),
		chromedp.Evaluate(
			`(() => { const n = performance.getEntriesByType('navigation')[0]; return n ? n.duration : 0; })()`,
			&loadMs),
	)
	if err != nil {
		return nil, fmt.Errorf("rendered session failed: %w", err)
	}
	if d.cfg.CollectMemory {
		// performance.memory is Chrome-only and best-effort.
		_ = chromedp.Run(tabCtx, chromedp.Evaluate(
			`performance.memory ? performance.memory.usedJSHeapSize : 0`, &heapUsed))
	}

	timingByURL := make(map[string]resourceTiming, len(timings))
	for _, t := range timings {
		timingByURL[t.Name] = t
	}

	mu.Lock()
	captured := make([]capturedResource, len(resources))
	copy(captured, resources)
	mu.Unlock()

	for _, res := range captured {
		if res.url == "" || res.url == target {
			continue
		}
		method := res.method
		if method == "" {
			method = "GET"
		}
		call := NetworkCall{
			URL:      res.url,
			Method:   method,
			Category: classifyDynamicResource(res.resourceType, res.url, method),
			Origin:   OriginDynamicCapture,
		}
		if t, ok := timingByURL[res.url]; ok {
			call.DurationMs = t.Duration
			call.SizeBytes = int64(t.TransferSize)
		}
		call.Score = scoreCall(&call)
		reg.AddCall(call)
	}

	return &PageInfo{
		Title:           title,
		LoadTimeMs:      loadMs,
		JSHeapUsedBytes: heapUsed,
	}, nil
}

// waitSettled blocks until no network event has arrived for the quiet
// window, or the capture cap elapses, or the context dies.
func (d *dynamicCapturer) waitSettled(ctx context.Context, mu *sync.Mutex, lastActivity *time.Time) {
	deadline := time.Now().Add(time.Duration(d.cfg.MaxCaptureMs) * time.Millisecond)
	quiet := time.Duration(d.cfg.QuietMs) * time.Millisecond
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.After(deadline) {
				return
			}
			mu.Lock()
			settled := now.Sub(*lastActivity) >= quiet
			mu.Unlock()
			if settled {
				return
			}
		}
	}
}
