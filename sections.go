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
	"regexp"
	"strings"
)

// sectionClassifier maps raw section identifiers and headings to canonical
// category names.
type sectionClassifier struct {
	cfg        *Config
	viewFamily *regexp.Regexp
}

func newSectionClassifier(cfg *Config) (*sectionClassifier, error) {
	re, err := regexp.Compile(cfg.ViewFamilyPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid view family pattern %q: %w", cfg.ViewFamilyPattern, err)
	}
	return &sectionClassifier{cfg: cfg, viewFamily: re}, nil
}

// isPaid reports whether the identifier marks a paid/sponsored placement.
// Paid sections are excluded before classification, unconditionally.
func (sc *sectionClassifier) isPaid(rawID string) bool {
	id := strings.ToLower(rawID)
	for _, marker := range sc.cfg.PaidMarkers {
		if strings.Contains(id, marker) {
			return true
		}
	}
	return false
}

// classify resolves a raw identifier and optional heading to a canonical
// section name. The cascade, in priority order: exact identifier lookup,
// identifier family pattern (heading kept as sub-label), heading substring
// rules, then the raw heading itself. A section with no heading and no match
// stays unclassified and is dropped from aggregation.
func (sc *sectionClassifier) classify(rawID, heading string) (name SectionName, subLabel string, ok bool) {
	id := strings.ToLower(strings.TrimSpace(rawID))

	if mapped, found := sc.cfg.SectionIDMap[id]; found {
		return mapped, "", true
	}
	if id != "" && sc.viewFamily.MatchString(id) {
		return SectionView, strings.TrimSpace(heading), true
	}
	heading = strings.TrimSpace(heading)
	if heading != "" {
		for _, rule := range sc.cfg.HeadingRules {
			if strings.Contains(heading, rule.Contains) {
				return rule.Name, "", true
			}
		}
		return SectionName(heading), "", true
	}
	return "", "", false
}

// pageSection ties a classified Section to the document node it came from,
// so the expander can interact with it and re-extract its items.
type pageSection struct {
	node    *Node
	section Section
}

// mainRegion locates the results region of the document: the configured
// container id, falling back to the body, then the document root.
func mainRegion(doc *Node, cfg *Config) *Node {
	if main := doc.FindByID(cfg.MainRegionID); main != nil {
		return main
	}
	var body *Node
	doc.Walk(func(el *Node) bool {
		if el.Tag == "body" {
			body = el
			return false
		}
		return true
	})
	if body != nil {
		return body
	}
	return doc
}

// sidePanel locates the side panel excluded by the geometry strategy, if any.
func sidePanel(doc *Node, cfg *Config) *Node {
	return doc.FindByID(cfg.SidePanelID)
}

// sectionRawID probes the configured attributes, in order, for the section's
// machine identifier, falling back to the first class token.
func sectionRawID(n *Node, cfg *Config) string {
	for _, attr := range cfg.SectionAttrs {
		if v := n.Attr(attr); v != "" {
			return v
		}
	}
	return n.firstClass()
}

// sectionHeading returns the text of the first heading element inside the
// section, or "".
func sectionHeading(n *Node) string {
	var heading string
	n.Walk(func(el *Node) bool {
		switch el.Tag {
		case "h1", "h2", "h3", "h4":
			if text := strings.TrimSpace(el.Text); text != "" {
				heading = text
				return false
			}
		}
		return true
	})
	return heading
}

// discoverSections walks the direct children of the main results region in
// document order, classifies each, and extracts the per-section item lists.
// Paid placements and unclassified blocks are dropped.
func discoverSections(doc *Node, cfg *Config, sc *sectionClassifier, f *linkFilter) []pageSection {
	main := mainRegion(doc, cfg)
	var out []pageSection
	for _, child := range main.Children {
		rawID := sectionRawID(child, cfg)
		if sc.isPaid(rawID) {
			continue
		}
		heading := sectionHeading(child)
		name, subLabel, ok := sc.classify(rawID, heading)
		if !ok {
			continue
		}
		items := extractItems(child, nil, f, sectionExtractOptions(cfg))
		if len(items) == 0 {
			continue
		}
		out = append(out, pageSection{
			node: child,
			section: Section{
				RawID:    rawID,
				Heading:  heading,
				Name:     name,
				SubLabel: subLabel,
				Items:    items,
			},
		})
	}
	return out
}
