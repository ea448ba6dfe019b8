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

package serptrace

import (
	"errors"
	"fmt"
)

// Stage identifies the phase of a crawl in which a structural failure occurred.
type Stage string

const (
	// StageLaunch means the browser process failed to start.
	StageLaunch Stage = "launch"
	// StageNavigate means the result page did not load within the navigation timeout.
	StageNavigate Stage = "navigate"
	// StageSnapshot means the rendered document could not be captured.
	StageSnapshot Stage = "snapshot"
	// StageRobots means robots.txt disallowed the result page.
	StageRobots Stage = "robots"
)

var (
	// ErrNoSections is returned when no classified section could be found on the page.
	// Callers treat this as a legitimate empty page, not a defect.
	ErrNoSections = errors.New("no classified sections on page")
	// ErrEmptyExtraction is returned when both extraction strategies yielded too few items.
	ErrEmptyExtraction = errors.New("both extraction strategies yielded no items")
	// ErrNoKeyword is returned when a check is requested without a keyword.
	ErrNoKeyword = errors.New("keyword must not be empty")
	// ErrNoTarget is returned when a check is requested without a target site or URL.
	ErrNoTarget = errors.New("target must not be empty")
)

// CrawlError is the typed error for structural crawl failures: browser launch,
// navigation and snapshot problems. Page-content-shape irregularities (missing
// sections, failed expansion, unresolved redirects) never surface as CrawlError;
// they are absorbed into the result data.
type CrawlError struct {
	Stage Stage
	URL   string
	Err   error
}

func (e *CrawlError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("crawl failed at stage %q: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("crawl failed at stage %q for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// crawlError wraps err into a CrawlError for the given stage.
func crawlError(stage Stage, url string, err error) *CrawlError {
	return &CrawlError{Stage: stage, URL: url, Err: err}
}
