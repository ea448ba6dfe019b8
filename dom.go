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

import "strings"

// Rect is the absolute bounding box of a rendered element, in CSS pixels
// relative to the document origin.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Node is one element of the rendered document tree. The extraction
// strategies, section classifier and overlay locator are pure functions over
// this structure, so they run identically against a live browser snapshot
// and a recorded fixture.
//
// Index is the element's position in document pre-order, matching the
// ordering of document.querySelectorAll("*"); the session uses it to address
// elements for interaction.
type Node struct {
	Tag      string            `json:"tag"`
	Index    int               `json:"index"`
	Attrs    map[string]string `json:"attrs"`
	Text     string            `json:"text"`
	Rect     Rect              `json:"rect"`
	Position string            `json:"position"`
	// ZIndex is nil when the computed z-index is "auto".
	ZIndex   *int    `json:"z"`
	Children []*Node `json:"children"`

	parent *Node
}

// fixParents restores parent pointers after JSON decoding.
func (n *Node) fixParents() {
	for _, c := range n.Children {
		c.parent = n
		c.fixParents()
	}
}

// Parent returns the element's parent, or nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Attr returns the value of an attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Height is the rendered height of the element.
func (n *Node) Height() float64 {
	return n.Rect.Height
}

// Walk visits n and its descendants in document order. The visitor returns
// false to stop the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Anchors returns all descendant anchor elements in document order,
// including n itself when it is an anchor.
func (n *Node) Anchors() []*Node {
	var out []*Node
	n.Walk(func(el *Node) bool {
		if el.Tag == "a" {
			out = append(out, el)
		}
		return true
	})
	return out
}

// FindByID returns the first descendant with the given id attribute.
func (n *Node) FindByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	n.Walk(func(el *Node) bool {
		if el.Attr("id") == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// firstClass returns the first class token of the element.
func (n *Node) firstClass() string {
	fields := strings.Fields(n.Attr("class"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// contains reports whether other is n or a descendant of n.
func (n *Node) contains(other *Node) bool {
	for el := other; el != nil; el = el.parent {
		if el == n {
			return true
		}
	}
	return false
}

// snapshotJS serialises the live document into the Node tree in a single
// evaluation round trip. Geometry is document-absolute; z-index is null when
// the computed value is "auto"; text is whitespace-collapsed and capped so
// container nodes stay small.
const snapshotJS = `(() => {
	let idx = 0;
	const cap = s => (s || '').replace(/\s+/g, ' ').trim().slice(0, 200);
	const walk = el => {
		const r = el.getBoundingClientRect();
		const cs = window.getComputedStyle(el);
		const attrs = {};
		for (const a of el.attributes) attrs[a.name] = a.value;
		if (el.tagName === 'A' && el.href) attrs.href = el.href;
		const z = parseInt(cs.zIndex, 10);
		const node = {
			tag: el.tagName.toLowerCase(),
			index: idx++,
			attrs: attrs,
			text: cap(el.innerText),
			rect: {
				x: r.left + window.scrollX,
				y: r.top + window.scrollY,
				w: r.width,
				h: r.height
			},
			position: cs.position,
			z: isNaN(z) ? null : z,
			children: []
		};
		for (const c of el.children) node.children.push(walk(c));
		return node;
	};
	return walk(document.documentElement);
})()`
