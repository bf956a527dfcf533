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
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// fetchTrace stores connection timing for a fetch, used to fill PageInfo
// when the static path is the only source of load timing.
type fetchTrace struct {
	start, connect    time.Time
	ConnectDuration   time.Duration
	FirstByteDuration time.Duration
}

// trace returns a httptrace.ClientTrace object to be used with an http
// request via httptrace.WithClientTrace() that fills in the fetchTrace.
func (ft *fetchTrace) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		ConnectStart: func(network, addr string) { ft.connect = time.Now() },
		ConnectDone: func(network, addr string, err error) {
			ft.ConnectDuration = time.Since(ft.connect)
		},
		GetConn: func(hostPort string) { ft.start = time.Now() },
		GotFirstResponseByte: func() {
			ft.FirstByteDuration = time.Since(ft.start)
		},
	}
}

// pageResponse is the outcome of a successful page fetch.
type pageResponse struct {
	Body       []byte
	StatusCode int
	Headers    http.Header
	Elapsed    time.Duration
	Trace      *fetchTrace
}

// fetcher executes all HTTP retrieval for one analysis: the target page,
// external scripts, special files and feed expansion.
type fetcher struct {
	client        *http.Client
	userAgent     string
	maxBodySize   int
	detectCharset bool
	retries       int
	backoff       time.Duration
}

func newFetcher(cfg *Config) (*fetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, ErrInvalidURL
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	jar, _ := cookiejar.New(nil)
	return &fetcher{
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
		},
		userAgent:     cfg.UserAgent,
		maxBodySize:   cfg.MaxBodySize,
		detectCharset: cfg.DetectCharset,
		retries:       cfg.FetchRetries,
		backoff:       cfg.RetryBackoff,
	}, nil
}

// fetchPage retrieves the target page with a bounded retry loop. Retries
// apply to transport errors and non-2xx statuses, with exponential
// backoff between attempts. The context deadline wins over retries.
func (f *fetcher) fetchPage(ctx context.Context, u string) (*pageResponse, error) {
	var lastStatus int
	var lastErr error

	backoff := f.backoff
	for attempt := 0; attempt < f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, elapsed, trace, err := f.do(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastStatus = resp.StatusCode
			lastErr = nil
			continue
		}
		resp.Elapsed = elapsed
		resp.Trace = trace
		return resp, nil
	}

	return nil, &UpstreamError{URL: u, Status: lastStatus, Attempts: f.retries, Err: lastErr}
}

// fetchResource retrieves a secondary resource (script, sitemap, robots,
// manifest, feed) in a single attempt. Callers treat failures as local.
func (f *fetcher) fetchResource(ctx context.Context, u string) ([]byte, int, error) {
	resp, _, _, err := f.do(ctx, u)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.StatusCode, nil
}

func (f *fetcher) do(ctx context.Context, u string) (*pageResponse, time.Duration, *fetchTrace, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	trace := &fetchTrace{}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace.trace()))

	started := time.Now()
	res, err := f.client.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	defer res.Body.Close()

	var bodyReader io.Reader = res.Body
	if f.maxBodySize > 0 {
		bodyReader = io.LimitReader(bodyReader, int64(f.maxBodySize))
	}
	contentEncoding := strings.ToLower(res.Header.Get("Content-Encoding"))
	if !res.Uncompressed && strings.Contains(contentEncoding, "gzip") {
		gz, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, 0, nil, err
		}
		defer gz.Close()
		bodyReader = gz
	}
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, 0, nil, err
	}
	elapsed := time.Since(started)

	body = f.fixCharset(body, res.Header.Get("Content-Type"))

	return &pageResponse{
		Body:       body,
		StatusCode: res.StatusCode,
		Headers:    res.Header,
	}, elapsed, trace, nil
}

// fixCharset re-encodes the body to UTF-8. A charset declared in the
// Content-Type wins; with DetectCharset enabled, undeclared charsets are
// sniffed with chardet. Failures keep the original bytes.
func (f *fetcher) fixCharset(body []byte, contentType string) []byte {
	if len(body) == 0 {
		return body
	}
	contentType = strings.ToLower(contentType)
	if strings.Contains(contentType, "charset=") {
		r, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			return body
		}
		decoded, err := io.ReadAll(r)
		if err != nil {
			return body
		}
		return decoded
	}
	if !f.detectCharset {
		return body
	}
	best, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || best == nil {
		return body
	}
	r, err := charset.NewReaderLabel(strings.ToLower(best.Charset), bytes.NewReader(body))
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}
