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

import "testing"

func TestFindSiteRank(t *testing.T) {
	items := []ResultItem{
		{URL: "https://cafe.example.com/a", Title: "첫번째 카페 글", Domain: "cafe.example.com"},
		{URL: "https://shop.example.com/b", Title: "쇼핑몰 상품", Domain: "shop.example.com"},
		{URL: "https://blog.naver.com/foodie/223", Title: "강남 맛집 총정리", Domain: "blog.naver.com"},
		{URL: "https://blog.naver.com/other/555", Title: "다른 블로그 글", Domain: "blog.naver.com"},
	}

	t.Run("FirstMatchWins", func(t *testing.T) {
		r := findSiteRank(items, "blog.naver.com", 50)
		if r.Rank != 3 {
			t.Fatalf("Rank = %d, want 3", r.Rank)
		}
		if r.URL != "https://blog.naver.com/foodie/223" {
			t.Errorf("URL = %q, want the exact href at the matched position", r.URL)
		}
		if r.Title != "강남 맛집 총정리" {
			t.Errorf("Title = %q", r.Title)
		}
		if !r.Found() {
			t.Error("Found() should be true for a ranked result")
		}
	})

	t.Run("NotFound_AllZero", func(t *testing.T) {
		r := findSiteRank(items, "missing.example.org", 50)
		if r.Rank != 0 || r.URL != "" || r.Title != "" {
			t.Errorf("no-match result should be zero, got %+v", r)
		}
		if r.Found() {
			t.Error("Found() should be false when the site is absent")
		}
	})

	t.Run("ResultCapApplies", func(t *testing.T) {
		r := findSiteRank(items, "blog.naver.com", 2)
		if r.Found() {
			t.Errorf("match beyond the cap should not count, got rank %d", r.Rank)
		}
	})

	t.Run("SchemeAndWWWIgnored", func(t *testing.T) {
		r := findSiteRank(items, "https://www.shop.example.com", 50)
		if r.Rank != 2 {
			t.Errorf("Rank = %d, want 2", r.Rank)
		}
	})
}

func exposureSections() []Section {
	return []Section{
		{RawID: "news", Name: SectionNews, Items: []ResultItem{
			{URL: "https://news1.example.com/a", Domain: "news1.example.com"},
			{URL: "https://news2.example.com/b", Domain: "news2.example.com"},
			{URL: "https://news3.example.com/c", Domain: "news3.example.com"},
		}},
		{RawID: "view", Name: SectionView, Items: []ResultItem{
			{URL: "https://blog.naver.com/camper/456", Title: "캠핑용품 정리", Domain: "blog.naver.com"},
			{URL: "https://blog.naver.com/hiker/789", Domain: "blog.naver.com"},
		}},
		{RawID: "web", Name: SectionWeb, Items: []ResultItem{
			{URL: "https://blog.naver.com/camper/456", Domain: "blog.naver.com"},
		}},
	}
}

func TestAggregateExposure(t *testing.T) {
	sections := exposureSections()

	t.Run("OverallRankSpansSections", func(t *testing.T) {
		res := aggregateExposure(sections, "https://blog.naver.com/camper/456")
		if !res.Found {
			t.Fatal("target should be found")
		}
		if res.SectionName != SectionView {
			t.Errorf("SectionName = %q, want %q", res.SectionName, SectionView)
		}
		if res.SectionRank != 1 {
			t.Errorf("SectionRank = %d, want 1", res.SectionRank)
		}
		if res.OverallRank != 4 {
			t.Errorf("OverallRank = %d, want 4 (3 news items precede)", res.OverallRank)
		}
	})

	t.Run("FirstMatchNotOverwritten", func(t *testing.T) {
		// The same URL also appears in the web section; the earlier match
		// must stand
		res := aggregateExposure(sections, "https://blog.naver.com/camper/456")
		if res.SectionName != SectionView || res.OverallRank != 4 {
			t.Errorf("later duplicate overwrote the first match: %+v", res)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		res := aggregateExposure(sections, "https://absent.example.org/x")
		if res.Found || res.SectionName != "" || res.SectionRank != 0 || res.OverallRank != 0 {
			t.Errorf("no-match result should be zero, got %+v", res)
		}
		if len(res.AllSections) != 3 {
			t.Error("AllSections should be populated even without a match")
		}
	})

	t.Run("EmptySections", func(t *testing.T) {
		res := aggregateExposure(nil, "https://blog.naver.com/camper/456")
		if res.Found {
			t.Error("empty page should never report a match")
		}
	})
}

func TestOverrideSection(t *testing.T) {
	target := "https://blog.naver.com/camper/456"
	base := aggregateExposure(exposureSections(), target)

	t.Run("EmptyPin_Unchanged", func(t *testing.T) {
		res := OverrideSection(base, "", target)
		if res.SectionName != base.SectionName || res.SectionRank != base.SectionRank {
			t.Errorf("empty pin must not change the result: %+v", res)
		}
	})

	t.Run("PinMatchesFoundSection_Unchanged", func(t *testing.T) {
		res := OverrideSection(base, SectionView, target)
		if res.SectionName != SectionView || res.SectionRank != 1 {
			t.Errorf("pin equal to the found section must not change the result: %+v", res)
		}
	})

	t.Run("PinToOtherSection_Rescans", func(t *testing.T) {
		res := OverrideSection(base, SectionWeb, target)
		if res.SectionName != SectionWeb {
			t.Errorf("SectionName = %q, want %q", res.SectionName, SectionWeb)
		}
		if res.SectionRank != 1 {
			t.Errorf("SectionRank = %d, want 1 within the pinned section", res.SectionRank)
		}
		if res.OverallRank != base.OverallRank {
			t.Error("OverallRank must describe the original first match")
		}
	})

	t.Run("PinToSectionWithoutTarget", func(t *testing.T) {
		res := OverrideSection(base, SectionNews, target)
		if res.SectionName != SectionNews {
			t.Errorf("SectionName = %q, want the pinned name", res.SectionName)
		}
		if res.SectionRank != 0 {
			t.Errorf("SectionRank = %d, want 0 when the pinned section lacks the target", res.SectionRank)
		}
	})

	t.Run("PinToAbsentSection_Clears", func(t *testing.T) {
		res := OverrideSection(base, SectionInfluencer, target)
		if res.SectionName != "" || res.SectionRank != 0 {
			t.Errorf("pin to a section absent from the page should clear the section fields: %+v", res)
		}
	})
}
