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
	"context"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
)

// PageDriver is the minimal interactive surface the expander needs from a
// live page: capture the rendered tree, click an element by its document
// order index, and wait for the document to settle. Session implements it;
// tests implement it over fixtures.
type PageDriver interface {
	Snapshot(ctx context.Context) (*Node, error)
	ClickIndex(ctx context.Context, index int) error
	WaitStable(ctx context.Context) error
}

// expander reveals the brand-content items hidden behind the "show more"
// lightbox. Expansion is opportunistic enrichment: any failure is swallowed
// and the truncated section stands, and an expansion that yields fewer items
// than the truncated list never replaces it.
type expander struct {
	cfg      *Config
	filter   *linkFilter
	lightbox glob.Glob
	log      *zap.Logger
}

func newExpander(cfg *Config, f *linkFilter, log *zap.Logger) (*expander, error) {
	g, err := glob.Compile(cfg.LightboxPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid lightbox pattern %q: %w", cfg.LightboxPattern, err)
	}
	return &expander{cfg: cfg, filter: f, lightbox: g, log: log}, nil
}

// expand attempts the "show more" interaction for a brand-content section and
// returns the enriched item list, or the original items when anything about
// the interaction fails or regresses the count.
func (ex *expander) expand(ctx context.Context, drv PageDriver, ps pageSection) []ResultItem {
	original := ps.section.Items

	control := ex.findMoreControl(ps.node)
	if control == nil {
		ex.log.Debug("brand content has no show-more control", zap.String("section", ps.section.RawID))
		return original
	}
	if err := drv.ClickIndex(ctx, control.Index); err != nil {
		ex.log.Warn("show-more click failed, keeping truncated section", zap.Error(err))
		return original
	}
	if err := drv.WaitStable(ctx); err != nil {
		ex.log.Warn("settle after show-more failed, keeping truncated section", zap.Error(err))
		return original
	}
	doc, err := drv.Snapshot(ctx)
	if err != nil {
		ex.log.Warn("snapshot after show-more failed, keeping truncated section", zap.Error(err))
		return original
	}

	overlay := findOverlayRoot(doc, ex.filter, ex.cfg.MinOverlayAnchors)
	if overlay == nil {
		ex.log.Warn("show-more overlay not detected, keeping truncated section")
		return original
	}
	expanded := groupOverlayCards(overlay, ex.filter, ex.cfg)
	if len(expanded) <= len(original) {
		ex.log.Debug("expansion did not enrich section",
			zap.Int("expanded", len(expanded)), zap.Int("original", len(original)))
		return original
	}
	return expanded
}

// findMoreControl locates the "show more" control of a section: an anchor
// whose destination matches the internal lightbox API pattern, or whose text
// is the literal more-label.
func (ex *expander) findMoreControl(section *Node) *Node {
	for _, a := range section.Anchors() {
		if href := a.Attr("href"); href != "" && ex.lightbox.Match(href) {
			return a
		}
		if strings.TrimSpace(a.Text) == ex.cfg.MoreLabel {
			return a
		}
	}
	return nil
}

// findOverlayRoot detects the opened modal surface by stacking context
// rather than class name: among the ancestors of tracking-redirect anchors,
// the absolutely or fixed positioned element with the highest explicit
// z-index that contains at least minAnchors such anchors. Equal z-indexes
// resolve to the element later in document order, so the innermost surface
// wins and the result does not depend on map iteration order.
func findOverlayRoot(doc *Node, f *linkFilter, minAnchors int) *Node {
	counts := map[*Node]int{}
	for _, a := range trackingAnchors(doc, f) {
		for el := a.Parent(); el != nil; el = el.Parent() {
			if el.ZIndex == nil {
				continue
			}
			if el.Position != "absolute" && el.Position != "fixed" {
				continue
			}
			counts[el]++
		}
	}
	var overlay *Node
	for el, count := range counts {
		if count < minAnchors {
			continue
		}
		if overlay == nil || *el.ZIndex > *overlay.ZIndex ||
			(*el.ZIndex == *overlay.ZIndex && el.Index > overlay.Index) {
			overlay = el
		}
	}
	return overlay
}

// groupOverlayCards groups the overlay's tracking anchors into content
// blocks and takes one item per block. A block is found by walking up from
// the anchor to the first ancestor with at least 3 children and a plausible
// card height, or the overlay root itself. Cards carry several anchors
// (thumbnail, title, call-to-action); the longest-text one is reliably the
// title link.
func groupOverlayCards(overlay *Node, f *linkFilter, cfg *Config) []ResultItem {
	type card struct {
		block *Node
		best  *Node
	}
	var cards []card
	byBlock := map[*Node]int{}

	for _, a := range trackingAnchors(overlay, f) {
		block := cardBlock(a, overlay, cfg)
		if i, seen := byBlock[block]; seen {
			if len([]rune(a.Text)) > len([]rune(cards[i].best.Text)) {
				cards[i].best = a
			}
			continue
		}
		byBlock[block] = len(cards)
		cards = append(cards, card{block: block, best: a})
	}

	items := make([]ResultItem, 0, len(cards))
	for _, c := range cards {
		items = append(items, itemFromAnchor(c.best))
	}
	return items
}

// cardBlock walks up from an anchor to its enclosing content card.
func cardBlock(a, overlay *Node, cfg *Config) *Node {
	for el := a.Parent(); el != nil && el != overlay; el = el.Parent() {
		if len(el.Children) >= 3 && el.Height() >= cfg.CardMinHeight && el.Height() <= cfg.CardMaxHeight {
			return el
		}
	}
	return overlay
}

// trackingAnchors returns the descendants of n that are anchors into the
// click-tracking host family, in document order.
func trackingAnchors(n *Node, f *linkFilter) []*Node {
	var out []*Node
	for _, a := range n.Anchors() {
		if href := a.Attr("href"); href != "" && f.isTracking(href) {
			out = append(out, a)
		}
	}
	return out
}
