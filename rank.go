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

// matchesTarget reports whether an extracted item denotes the target: either
// its resolved URL or its bare domain matches under normalization.
func matchesTarget(item ResultItem, target string) bool {
	return MatchURL(item.URL, target) || MatchURL(item.Domain, target)
}

// findSiteRank returns the 1-based position of the first item matching the
// target site among the first maxResults items, with the exact href and
// title found at that position. Rank stays 0 when no item matches within
// the cap.
func findSiteRank(items []ResultItem, target string, maxResults int) RankResult {
	for i, item := range items {
		if i >= maxResults {
			break
		}
		if matchesTarget(item, target) {
			return RankResult{Rank: i + 1, URL: item.URL, Title: item.Title}
		}
	}
	return RankResult{}
}

// aggregateExposure folds the classified sections, in document order, into
// an ExposureResult. A single running counter numbers every item across
// sections; the first match fixes the result and later matches never
// overwrite it, but counting continues so AllSections describes the whole
// page for caller-side re-matching.
func aggregateExposure(sections []Section, target string) ExposureResult {
	res := ExposureResult{AllSections: sections}
	overall := 0
	for _, sec := range sections {
		for i, item := range sec.Items {
			overall++
			if res.Found || !matchesTarget(item, target) {
				continue
			}
			res.Found = true
			res.SectionName = sec.Name
			res.SectionRank = i + 1
			res.OverallRank = overall
		}
	}
	return res
}

// OverrideSection applies the caller-side pinned-section policy to an
// exposure result. When the pinned section differs from where the match was
// found, that section's items are re-scanned independently: a match sets
// SectionRank within the pinned section, no match leaves it at zero with the
// pinned name, and a pinned section absent from the page clears both to
// signal "no such section on this page load". OverallRank is untouched; it
// describes the original first match.
func OverrideSection(res ExposureResult, pinned SectionName, target string) ExposureResult {
	if pinned == "" || pinned == res.SectionName {
		return res
	}
	var pinnedSection *Section
	for i := range res.AllSections {
		if res.AllSections[i].Name == pinned {
			pinnedSection = &res.AllSections[i]
			break
		}
	}
	if pinnedSection == nil {
		res.SectionName = ""
		res.SectionRank = 0
		return res
	}
	res.SectionName = pinned
	res.SectionRank = 0
	for i, item := range pinnedSection.Items {
		if matchesTarget(item, target) {
			res.SectionRank = i + 1
			break
		}
	}
	return res
}
