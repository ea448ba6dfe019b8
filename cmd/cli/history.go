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
	"flag"
	"fmt"
	"time"

	"github.com/serptrace/serptrace/internal/store"
)

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	kind := fs.String("kind", "rank", "Subject kind: rank or exposure")
	subjectID := fs.Uint("subject-id", 0, "Show the check timeline for one subject")
	pruneDays := fs.Int("prune-days", 0, "Delete checks older than this many days, then exit")

	fs.Usage = func() {
		fmt.Println(`Usage: serptrace history [flags]

Show tracked subjects and their recorded check timelines.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # List all tracked site-rank subjects
  serptrace history --kind rank

  # Show the timeline for one subject
  serptrace history --subject-id 3

  # Prune history older than 90 days
  serptrace history --prune-days 90`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	if *pruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -*pruneDays).Unix()
		pruned, err := st.DeleteChecksBefore(cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d checks older than %d days\n", pruned, *pruneDays)
		return nil
	}

	if *subjectID > 0 {
		return printTimeline(st, uint(*subjectID))
	}

	storeKind := store.KindSiteRank
	if *kind == "exposure" {
		storeKind = store.KindURLExposure
	} else if *kind != "rank" {
		return fmt.Errorf("invalid kind: %s (must be rank or exposure)", *kind)
	}

	subjects, err := st.GetSubjects(storeKind)
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		fmt.Println("No tracked subjects yet. Run a check with --save to start a timeline.")
		return nil
	}

	fmt.Printf("%-5s %-30s %-40s %s\n", "ID", "KEYWORD", "TARGET", "LATEST")
	for _, subject := range subjects {
		latest, err := st.GetLatestCheck(subject.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%-5d %-30s %-40s %s\n",
			subject.ID, subject.Keyword, subject.Target, summarizeCheck(latest))
	}
	return nil
}

func printTimeline(st *store.Store, subjectID uint) error {
	checks, err := st.GetSubjectChecks(subjectID)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		fmt.Printf("No checks recorded for subject %d\n", subjectID)
		return nil
	}

	fmt.Printf("%-20s %s\n", "CHECKED AT", "RESULT")
	for _, check := range checks {
		checkedAt := time.Unix(check.CheckedAt, 0).Format("2006-01-02 15:04:05")
		fmt.Printf("%-20s %s\n", checkedAt, summarizeCheck(&check))
	}
	return nil
}

func summarizeCheck(check *store.Check) string {
	switch {
	case check == nil:
		return "no checks yet"
	case check.Error != "":
		return fmt.Sprintf("failed: %s", check.Error)
	case !check.Found:
		return "not found"
	case check.SectionName != "":
		return fmt.Sprintf("%s #%d (overall #%d)", check.SectionName, check.SectionRank, check.OverallRank)
	default:
		return fmt.Sprintf("#%d", check.Rank)
	}
}
