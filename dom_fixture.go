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
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SnapshotFromHTML builds the rendered element tree from a saved HTML
// document. Geometry that a browser would compute is read from inline style
// declarations (height, top, left, width, position, z-index), which is how
// recorded result-page fixtures encode layout. This lets the full
// classify/extract/aggregate pipeline run without a browser, both in tests
// and when replaying captured pages.
func SnapshotFromHTML(doc string) (*Node, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	sel := gq.Find("html")
	if sel.Length() == 0 {
		return nil, fmt.Errorf("document has no root element")
	}
	idx := 0
	root := buildFixtureNode(sel.Get(0), &idx)
	root.fixParents()
	return root, nil
}

func buildFixtureNode(el *html.Node, idx *int) *Node {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Key] = a.Val
	}
	n := &Node{
		Tag:   el.Data,
		Index: *idx,
		Attrs: attrs,
		Text:  collapseText(nodeText(el)),
	}
	*idx++

	style := parseStyle(attrs["style"])
	n.Rect = Rect{
		X:      style.number("left"),
		Y:      style.number("top"),
		Width:  style.number("width"),
		Height: style.number("height"),
	}
	n.Position = style["position"]
	if z, ok := style["z-index"]; ok {
		if zi, err := strconv.Atoi(z); err == nil {
			n.ZIndex = &zi
		}
	}

	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			n.Children = append(n.Children, buildFixtureNode(c, idx))
		}
	}
	return n
}

// nodeText concatenates the text content of el and its descendants.
func nodeText(el *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(el)
	return sb.String()
}

// collapseText mirrors the snapshot script: whitespace collapsed, capped.
func collapseText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > 200 {
		s = string(runes[:200])
	}
	return s
}

type styleDecl map[string]string

// parseStyle splits an inline style attribute into declarations.
func parseStyle(style string) styleDecl {
	out := styleDecl{}
	for _, decl := range strings.Split(style, ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(strings.ToLower(kv[0]))] = strings.TrimSpace(kv[1])
	}
	return out
}

// number parses a pixel declaration like "520px" (or a bare number) to a float.
func (s styleDecl) number(key string) float64 {
	v, ok := s[key]
	if !ok {
		return 0
	}
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
