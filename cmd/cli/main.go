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

// PageScope CLI
//
// Command-line interface for PageScope single-page analysis. Runs one
// analysis and prints the result as JSON.
//
// Usage:
//
//	pagescope <command> [flags]
//
// Commands:
//
//	analyze   Analyze a page in a given mode
//	modes     List supported analysis modes
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/agentberlin/pagescope"
	"github.com/agentberlin/pagescope/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "analyze":
		if err := runAnalyze(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "modes":
		for _, name := range pagescope.ModeNames() {
			fmt.Println(name)
		}
	case "version", "-v", "--version":
		fmt.Printf("PageScope CLI %s\n", version.CurrentVersion)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`PageScope CLI - Single-page content and network-call analysis

Usage:
  pagescope <command> [flags]

Commands:
  analyze   Analyze a page in a given mode
  modes     List supported analysis modes
  version   Show version information
  help      Show this help message

Examples:
  # Find post/article candidates on a page
  pagescope analyze https://example.com

  # Find POST call sites in the page's scripts
  pagescope analyze --mode post https://example.com

  # Full analysis with a rendered capture session
  pagescope analyze --mode full https://example.com

  # Route all traffic through a proxy
  pagescope analyze --proxy http://localhost:8118 https://example.com

Use "pagescope analyze --help" for the full flag list.`)
}
