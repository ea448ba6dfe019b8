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

// SectionName is a canonical category label for a result-page section.
type SectionName string

const (
	SectionBrandContent SectionName = "BrandContent"
	SectionView         SectionName = "View"
	SectionInfluencer   SectionName = "Influencer"
	SectionWeb          SectionName = "Web"
	SectionNews         SectionName = "News"
)

// ResultItem is one extracted search result: the resolved destination URL,
// the anchor title (capped at 100 characters) and the destination hostname.
type ResultItem struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Domain string `json:"domain"`
}

// Section is a visually and semantically distinct block of the result page
// with its own ordered item list. Name is empty for unclassified sections,
// which are dropped before aggregation. SubLabel carries the heading text of
// sections classified through an identifier family pattern.
type Section struct {
	RawID    string       `json:"rawId"`
	Heading  string       `json:"heading,omitempty"`
	Name     SectionName  `json:"name,omitempty"`
	SubLabel string       `json:"subLabel,omitempty"`
	Items    []ResultItem `json:"items"`
}

// RankResult is the outcome of a site-rank check. Rank is the 1-based
// position of the first matching item, or 0 when the site was not found
// within the result cap; URL and Title are empty in that case.
type RankResult struct {
	Rank  int    `json:"rank"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// Found reports whether the target site appeared within the result cap.
func (r RankResult) Found() bool {
	return r.Rank > 0
}

// ExposureResult is the outcome of a URL-exposure check. OverallRank numbers
// items consecutively across all classified sections in document order;
// SectionRank is the 1-based position within the matched section. All rank
// fields are zero when Found is false. AllSections is always populated so
// callers can re-match against a different section.
type ExposureResult struct {
	Found       bool        `json:"found"`
	SectionName SectionName `json:"sectionName,omitempty"`
	SectionRank int         `json:"sectionRank,omitempty"`
	OverallRank int         `json:"overallRank,omitempty"`
	AllSections []Section   `json:"allSections"`
}

// SiteRankRequest is one item of a site-rank batch.
type SiteRankRequest struct {
	ID      string `json:"id"`
	Keyword string `json:"keyword"`
	SiteURL string `json:"siteUrl"`
}

// ExposureRequest is one item of a URL-exposure batch. PinnedSection, when
// set, is the caller's desired section; the batch applies the section
// override against it after the crawl.
type ExposureRequest struct {
	ID            string      `json:"id"`
	Keyword       string      `json:"keyword"`
	TargetURL     string      `json:"targetUrl"`
	PinnedSection SectionName `json:"pinnedSection,omitempty"`
}

// SiteRankBatchResult is the per-item outcome of a site-rank batch. Exactly
// one of Result and Err is meaningful.
type SiteRankBatchResult struct {
	ID     string      `json:"id"`
	Result *RankResult `json:"result,omitempty"`
	Err    string      `json:"error,omitempty"`
}

// ExposureBatchResult is the per-item outcome of a URL-exposure batch.
type ExposureBatchResult struct {
	ID     string          `json:"id"`
	Result *ExposureResult `json:"result,omitempty"`
	Err    string          `json:"error,omitempty"`
}
