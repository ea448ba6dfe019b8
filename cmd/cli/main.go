// Copyright 2025 Serptrace Authors
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

// Serptrace CLI
//
// Command-line interface for the serptrace ranking extraction engine.
// Checks where a site or URL ranks on a search result page and records
// the history of repeated checks.
//
// Usage:
//
//	serptrace <command> [flags]
//
// Commands:
//
//	rank      Check the rank of a site for a keyword
//	exposure  Check where a specific URL is exposed for a keyword
//	batch     Run checks from a JSON request file
//	history   Show recorded check history
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const currentVersion = "1.0.0"

func main() {
	// Optional .env for SERPTRACE_* overrides
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "rank":
		if err := runRank(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "exposure":
		if err := runExposure(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "batch":
		if err := runBatch(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "history":
		if err := runHistory(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Printf("Serptrace CLI %s\n", currentVersion)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Serptrace CLI - Search result rank tracking

Usage:
  serptrace <command> [flags]

Commands:
  rank      Check the rank of a site for a keyword
  exposure  Check where a specific URL is exposed for a keyword
  batch     Run checks from a JSON request file
  history   Show recorded check history
  version   Show version information
  help      Show this help message

Examples:
  # Where does blog.naver.com rank for a keyword?
  serptrace rank "강남 맛집" blog.naver.com

  # In which section is a specific post exposed?
  serptrace exposure "캠핑용품" https://blog.naver.com/camper/456

  # Run a batch of checks and record the history
  serptrace batch requests.json --mode rank --save

  # Show the recorded timeline for tracked subjects
  serptrace history --kind rank

Use "serptrace <command> --help" for more information about a command.`)
}
