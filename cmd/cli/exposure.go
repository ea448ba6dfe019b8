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

func runExposure(args []string) error {
	fs := flag.NewFlagSet("exposure", flag.ExitOnError)

	var flags engineFlags
	registerEngineFlags(fs, &flags)
	jsonOut := fs.Bool("json", false, "Print the result as JSON")
	save := fs.Bool("save", false, "Record the check in the history database")
	section := fs.String("section", "", "Pin the result to this section name")

	fs.Usage = func() {
		fmt.Println(`Usage: serptrace exposure <keyword> <target-url> [flags]

Check in which section, and at what position, a specific URL is exposed on
the result page for a keyword.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # Where is a specific blog post exposed?
  serptrace exposure "캠핑용품" https://blog.naver.com/camper/456

  # Re-match within a pinned section
  serptrace exposure "캠핑용품" https://blog.naver.com/camper/456 --section 뷰`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("keyword and target URL arguments are required")
	}
	keyword, targetURL := fs.Arg(0), fs.Arg(1)

	engine, err := buildEngine(flags)
	if err != nil {
		return err
	}

	result, err := engine.CheckURLExposure(context.Background(), keyword, targetURL)
	if err == nil && *section != "" {
		overridden := serptrace.OverrideSection(*result, serptrace.SectionName(*section), targetURL)
		result = &overridden
	}
	if *save {
		if saveErr := saveExposure(keyword, targetURL, result, err); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record check: %v\n", saveErr)
		}
	}
	if err != nil {
		return err
	}

	if *jsonOut {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	if !result.Found {
		fmt.Printf("%q: %s not found in any section\n", keyword, targetURL)
		return nil
	}
	fmt.Printf("%q: %s found\n", keyword, targetURL)
	fmt.Printf("  Section:      %s (position %d)\n", result.SectionName, result.SectionRank)
	fmt.Printf("  Overall rank: %d\n", result.OverallRank)
	return nil
}

func saveExposure(keyword, targetURL string, result *serptrace.ExposureResult, checkErr error) error {
	st, err := store.NewStore()
	if err != nil {
		return err
	}
	subject, err := st.GetOrCreateSubject(store.KindURLExposure, keyword, targetURL)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	if checkErr != nil {
		_, err = st.SaveFailedCheck(subject.ID, now, checkErr.Error())
		return err
	}
	_, err = st.SaveExposureCheck(subject.ID, now, result.Found,
		string(result.SectionName), result.SectionRank, result.OverallRank)
	return err
}
