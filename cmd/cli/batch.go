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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/serptrace/serptrace"
	"github.com/serptrace/serptrace/internal/store"
)

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)

	var flags engineFlags
	registerEngineFlags(fs, &flags)
	mode := fs.String("mode", "rank", "Check mode: rank or exposure")
	save := fs.Bool("save", false, "Record every check in the history database")
	quiet := fs.Bool("quiet", false, "Only print the JSON result array")

	fs.Usage = func() {
		fmt.Println(`Usage: serptrace batch <requests.json> [flags]

Run a batch of checks from a JSON request file. Each item is checked on its
own page load; a failed item is reported in its result record and never
aborts the rest of the batch.

Request file format (mode rank):
  [{"id": "r1", "keyword": "강남 맛집", "siteUrl": "blog.naver.com"}, ...]

Request file format (mode exposure):
  [{"id": "e1", "keyword": "캠핑용품", "targetUrl": "https://...", "pinnedSection": "뷰"}, ...]

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("request file argument is required")
	}
	if *mode != "rank" && *mode != "exposure" {
		return fmt.Errorf("invalid mode: %s (must be rank or exposure)", *mode)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read request file: %v", err)
	}

	engine, err := buildEngine(flags)
	if err != nil {
		return err
	}

	var st *store.Store
	if *save {
		if st, err = store.NewStore(); err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
	}

	switch *mode {
	case "rank":
		return runRankBatch(engine, st, data, *quiet)
	default:
		return runExposureBatch(engine, st, data, *quiet)
	}
}

func runRankBatch(engine *serptrace.Engine, st *store.Store, data []byte, quiet bool) error {
	var reqs []serptrace.SiteRankRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("failed to parse request file: %v", err)
	}
	if !quiet {
		fmt.Printf("Running %d rank checks...\n", len(reqs))
	}

	results := engine.CheckSiteRankBatch(context.Background(), reqs)

	if st != nil {
		now := time.Now().Unix()
		for i, res := range results {
			subject, err := st.GetOrCreateSubject(store.KindSiteRank, reqs[i].Keyword, reqs[i].SiteURL)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record %s: %v\n", res.ID, err)
				continue
			}
			if res.Err != "" {
				_, err = st.SaveFailedCheck(subject.ID, now, res.Err)
			} else {
				_, err = st.SaveRankCheck(subject.ID, now, res.Result.Rank, res.Result.URL, res.Result.Title)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record %s: %v\n", res.ID, err)
			}
		}
	}

	return json.NewEncoder(os.Stdout).Encode(results)
}

func runExposureBatch(engine *serptrace.Engine, st *store.Store, data []byte, quiet bool) error {
	var reqs []serptrace.ExposureRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("failed to parse request file: %v", err)
	}
	if !quiet {
		fmt.Printf("Running %d exposure checks...\n", len(reqs))
	}

	results := engine.CheckURLExposureBatch(context.Background(), reqs)

	if st != nil {
		now := time.Now().Unix()
		for i, res := range results {
			subject, err := st.GetOrCreateSubject(store.KindURLExposure, reqs[i].Keyword, reqs[i].TargetURL)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record %s: %v\n", res.ID, err)
				continue
			}
			if res.Err != "" {
				_, err = st.SaveFailedCheck(subject.ID, now, res.Err)
			} else {
				_, err = st.SaveExposureCheck(subject.ID, now, res.Result.Found,
					string(res.Result.SectionName), res.Result.SectionRank, res.Result.OverallRank)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record %s: %v\n", res.ID, err)
			}
		}
	}

	return json.NewEncoder(os.Stdout).Encode(results)
}
