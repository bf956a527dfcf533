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
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// scriptCorpus is the text searched by the call-site scanner: all inline
// script bodies plus the bodies of up to MaxScripts external script files.
type scriptCorpus struct {
	Sources []ScriptSource
	// ExternalURLs lists every resolved external script URL found in the
	// markup, including ones past the fetch cap. Used by the scripts mode.
	ExternalURLs []string
}

// corpusBuilder collects the script corpus for one analysis.
type corpusBuilder struct {
	fetcher   *fetcher
	maxFetch  int
	batchSize int
	stagger   time.Duration
	timeout   time.Duration
}

func newCorpusBuilder(f *fetcher, cfg *Config) *corpusBuilder {
	return &corpusBuilder{
		fetcher:   f,
		maxFetch:  cfg.MaxScripts,
		batchSize: cfg.ScriptBatchSize,
		stagger:   cfg.ScriptStagger,
		timeout:   cfg.ScriptTimeout,
	}
}

// Build collects inline script bodies unconditionally and fetches capped
// external scripts in staggered batches. A failed or timed-out download
// yields an empty body; failures never abort the corpus. Source order is
// preserved so context extraction stays deterministic.
func (b *corpusBuilder) Build(ctx context.Context, doc *goquery.Document, base *url.URL) *scriptCorpus {
	corpus := &scriptCorpus{}

	var externals []string
	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			resolved := resolveRef(base, src)
			if resolved != "" {
				externals = append(externals, resolved)
			}
			return
		}
		text := s.Text()
		if strings.TrimSpace(text) == "" {
			return
		}
		corpus.Sources = append(corpus.Sources, ScriptSource{Text: text})
	})
	corpus.ExternalURLs = externals

	toFetch := externals
	if len(toFetch) > b.maxFetch {
		toFetch = toFetch[:b.maxFetch]
	}
	bodies := b.fetchAll(ctx, toFetch)
	for i, u := range toFetch {
		corpus.Sources = append(corpus.Sources, ScriptSource{URL: u, Text: bodies[i]})
	}

	return corpus
}

// fetchAll downloads script bodies in batches of batchSize with a small
// staggered start delay between requests in the same batch, to avoid
// bursting the origin. Results are positional; a failure leaves "".
func (b *corpusBuilder) fetchAll(ctx context.Context, urls []string) []string {
	bodies := make([]string, len(urls))

	for start := 0; start < len(urls); start += b.batchSize {
		end := start + b.batchSize
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx, slot int) {
				defer wg.Done()
				if slot > 0 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(time.Duration(slot) * b.stagger):
					}
				}
				fetchCtx, cancel := context.WithTimeout(ctx, b.timeout)
				defer cancel()
				body, status, err := b.fetcher.fetchResource(fetchCtx, urls[idx])
				if err != nil || status < 200 || status >= 300 {
					return
				}
				bodies[idx] = string(body)
			}(i, i-start)
		}
		wg.Wait()

		if ctx.Err() != nil {
			break
		}
	}

	return bodies
}
