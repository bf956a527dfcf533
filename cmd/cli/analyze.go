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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentberlin/pagescope"
	"github.com/agentberlin/pagescope/debug"
)

// analyzeFlags holds all the flags for the analyze command
type analyzeFlags struct {
	mode      string
	proxy     string
	userAgent string
	deadline  time.Duration

	// Script corpus
	maxScripts int

	// Content
	expandFeeds bool

	// Output
	pretty bool
	debug  bool
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)

	var flags analyzeFlags

	fs.StringVar(&flags.mode, "mode", "posts", "Analysis mode (see 'pagescope modes')")
	fs.StringVar(&flags.mode, "m", "posts", "Analysis mode (shorthand)")
	fs.StringVar(&flags.proxy, "proxy", "", "Proxy URL for all outgoing requests")
	fs.StringVar(&flags.userAgent, "user-agent", "", "Custom User-Agent string")
	fs.StringVar(&flags.userAgent, "A", "", "Custom User-Agent string (shorthand)")
	fs.DurationVar(&flags.deadline, "deadline", 0, "Overall analysis deadline (default 60s, 90s for rendered modes)")
	fs.IntVar(&flags.maxScripts, "max-scripts", 0, "Maximum external scripts to fetch (default 8)")
	fs.BoolVar(&flags.expandFeeds, "expand-feeds", false, "Fetch discovered feeds and include their entries")
	fs.BoolVar(&flags.pretty, "pretty", false, "Indent JSON output")
	fs.BoolVar(&flags.debug, "debug", false, "Log pipeline events to stderr")

	fs.Usage = func() {
		fmt.Println(`Usage: pagescope analyze <url> [flags]

Analyze a single page and print the result as JSON.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # Find post/article candidates
  pagescope analyze https://example.com

  # Find POST call sites in the page's scripts
  pagescope analyze --mode post https://example.com

  # Full analysis with a rendered capture session
  pagescope analyze --mode full --pretty https://example.com`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Check for URL argument
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("URL argument is required")
	}

	urlStr := fs.Arg(0)
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	cfg := &pagescope.Config{
		UserAgent:   flags.userAgent,
		MaxScripts:  flags.maxScripts,
		ExpandFeeds: flags.expandFeeds,
	}
	if flags.deadline != 0 {
		cfg.Deadline = flags.deadline
		cfg.RenderDeadline = flags.deadline
	}
	if flags.debug {
		cfg.Debugger = &debug.LogDebugger{}
	}

	analyzer, err := pagescope.New(cfg)
	if err != nil {
		return err
	}

	result, err := analyzer.Analyze(context.Background(), pagescope.Request{
		URL:   urlStr,
		Mode:  flags.mode,
		Proxy: flags.proxy,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if flags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
