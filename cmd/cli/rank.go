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

func runRank(args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)

	var flags engineFlags
	registerEngineFlags(fs, &flags)
	jsonOut := fs.Bool("json", false, "Print the result as JSON")
	save := fs.Bool("save", false, "Record the check in the history database")

	fs.Usage = func() {
		fmt.Println(`Usage: serptrace rank <keyword> <site-url> [flags]

Check the rank of a site on the result page for a keyword.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # Where does blog.naver.com rank?
  serptrace rank "강남 맛집" blog.naver.com

  # Record the check so repeated runs build a timeline
  serptrace rank "강남 맛집" blog.naver.com --save`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("keyword and site URL arguments are required")
	}
	keyword, siteURL := fs.Arg(0), fs.Arg(1)

	engine, err := buildEngine(flags)
	if err != nil {
		return err
	}

	result, err := engine.CheckSiteRank(context.Background(), keyword, siteURL)
	if *save {
		if saveErr := saveRank(keyword, siteURL, result, err); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record check: %v\n", saveErr)
		}
	}
	if err != nil {
		return err
	}

	if *jsonOut {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	if !result.Found() {
		fmt.Printf("%q: %s not found in results\n", keyword, siteURL)
		return nil
	}
	fmt.Printf("%q: %s ranks #%d\n", keyword, siteURL, result.Rank)
	fmt.Printf("  URL:   %s\n", result.URL)
	if result.Title != "" {
		fmt.Printf("  Title: %s\n", result.Title)
	}
	return nil
}

// saveRank records the outcome of a single rank check, including failures
func saveRank(keyword, siteURL string, result *serptrace.RankResult, checkErr error) error {
	st, err := store.NewStore()
	if err != nil {
		return err
	}
	subject, err := st.GetOrCreateSubject(store.KindSiteRank, keyword, siteURL)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	if checkErr != nil {
		_, err = st.SaveFailedCheck(subject.ID, now, checkErr.Error())
		return err
	}
	_, err = st.SaveRankCheck(subject.ID, now, result.Rank, result.URL, result.Title)
	return err
}
