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
	"fmt"
	"math"
	"strings"

	"github.com/gobwas/glob"
	"github.com/kennygrant/sanitize"
)

// linkFilter decides which anchors count as outbound result links. It bundles
// the config thresholds with the compiled ad-click patterns so the extraction
// strategies stay pure functions.
type linkFilter struct {
	cfg     *Config
	adGlobs []glob.Glob
}

func newLinkFilter(cfg *Config) (*linkFilter, error) {
	f := &linkFilter{cfg: cfg}
	for _, pattern := range cfg.AdClickPatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ad-click pattern %q: %w", pattern, err)
		}
		f.adGlobs = append(f.adGlobs, g)
	}
	return f, nil
}

// valid reports whether the anchor is an outbound result link: http(s)
// scheme, not the engine's own host, not an ad-click redirect, and anchor
// text of at least minText characters. Tracking-host anchors pass the
// ad-click check even when a pattern matches them: they resolve to real
// destinations later, so rejecting them would drop legitimate items.
func (f *linkFilter) valid(a *Node, minText int) bool {
	href := a.Attr("href")
	if href == "" {
		return false
	}
	switch schemeOf(href) {
	case "http", "https":
	default:
		return false
	}
	host := hostOf(href)
	for _, engineHost := range f.cfg.EngineHosts {
		if hostMatches(host, engineHost) {
			return false
		}
	}
	if f.isAdClick(href) && !f.isTracking(href) {
		return false
	}
	return len([]rune(strings.TrimSpace(a.Text))) >= minText
}

// isAdClick reports whether the URL matches an internal ad-click pattern.
func (f *linkFilter) isAdClick(href string) bool {
	for _, g := range f.adGlobs {
		if g.Match(href) {
			return true
		}
	}
	return false
}

// isTracking reports whether the URL lives on the indirect click-tracking
// host family and must go through the redirect resolver.
func (f *linkFilter) isTracking(href string) bool {
	host := hostOf(href)
	for _, trackingHost := range f.cfg.TrackingHosts {
		if hostMatches(host, trackingHost) {
			return true
		}
	}
	return false
}

// itemFromAnchor derives a ResultItem from a valid anchor.
func itemFromAnchor(a *Node) ResultItem {
	href := a.Attr("href")
	return ResultItem{
		URL:    href,
		Title:  cleanTitle(a.Text),
		Domain: hostOf(href),
	}
}

// cleanTitle strips markup residue, collapses whitespace and caps the title
// at 100 characters.
func cleanTitle(s string) string {
	s = sanitize.HTML(s)
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > 100 {
		s = string(runes[:100])
	}
	return s
}

// extractOptions tunes container discovery. Page-level extraction uses the
// config thresholds directly; per-section extraction relaxes them because a
// section holds far fewer cards than the page-level results list.
type extractOptions struct {
	minContainerHeight   float64
	minContainerChildren int
}

func pageExtractOptions(cfg *Config) extractOptions {
	return extractOptions{
		minContainerHeight:   cfg.MinContainerHeight,
		minContainerChildren: cfg.MinContainerChildren,
	}
}

func sectionExtractOptions(cfg *Config) extractOptions {
	return extractOptions{
		minContainerHeight:   cfg.CardMinHeight,
		minContainerChildren: 2,
	}
}

// extractStructural is the primary strategy. The results list container is
// the descendant with the greatest direct-child count among elements taller
// than the height threshold: the single largest repeating list on the page.
// Each direct child contributes its first valid outbound link; near-zero
// height children are layout separators and are skipped. The strategy fails
// when the container has too few children.
func extractStructural(region *Node, f *linkFilter, opts extractOptions) ([]ResultItem, bool) {
	var container *Node
	region.Walk(func(el *Node) bool {
		if el.Height() > opts.minContainerHeight {
			if container == nil || len(el.Children) > len(container.Children) {
				container = el
			}
		}
		return true
	})
	if container == nil || len(container.Children) < opts.minContainerChildren {
		return nil, false
	}

	var items []ResultItem
	for _, child := range container.Children {
		if child.Height() < f.cfg.MinSeparatorHeight {
			continue
		}
		for _, a := range child.Anchors() {
			if f.valid(a, f.cfg.MinAnchorText) {
				items = append(items, itemFromAnchor(a))
				break
			}
		}
	}
	return items, true
}

// extractGeometric is the fallback strategy: every outbound link in the main
// region outside the side panel, with a stricter text-length floor, where
// links vertically within the suppression window of the previously accepted
// link are treated as belonging to the same visual card and dropped. It
// tolerates markup the structural strategy cannot interpret at the cost of
// coarser title fidelity.
func extractGeometric(region, sidePanel *Node, f *linkFilter) []ResultItem {
	var items []ResultItem
	lastY := math.Inf(-1)
	for _, a := range region.Anchors() {
		if sidePanel != nil && sidePanel.contains(a) {
			continue
		}
		if !f.valid(a, f.cfg.MinAnchorTextLoose) {
			continue
		}
		if math.Abs(a.Rect.Y-lastY) < f.cfg.SuppressWindow {
			continue
		}
		lastY = a.Rect.Y
		items = append(items, itemFromAnchor(a))
	}
	return items
}

// extractItems runs the structural strategy and falls back to the geometry
// strategy when structure detection yields too few candidates; when both are
// tried the larger result set wins.
func extractItems(region, sidePanel *Node, f *linkFilter, opts extractOptions) []ResultItem {
	items, ok := extractStructural(region, f, opts)
	if ok {
		return items
	}
	if fallback := extractGeometric(region, sidePanel, f); len(fallback) > len(items) {
		return fallback
	}
	return items
}
