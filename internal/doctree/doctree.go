package doctree

import "strings"

// Document is a content record as stored by the content repository.
type Document struct {
	ID           string   `json:"id"`
	FullTitle    string   `json:"fullTitle"`
	SidebarTitle string   `json:"sidebarTitle,omitempty"`
	LastEdited   string   `json:"lastEdited,omitempty"`
	RawText      string   `json:"content"`
	Views        []string `json:"views,omitempty"` // Visibility tags matched against the active view
}

// Kind classifies a structural node.
type Kind string

const (
	KindContainer Kind = "container"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindText      Kind = "text"
	KindCodeBlock Kind = "code_block"
	KindWidget    Kind = "widget"
	KindInline    Kind = "inline"
)

// Attr is a single presentation or data attribute on a node.
type Attr struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// Node is a recursive element of a compiled document.
type Node struct {
	Kind     Kind    `json:"kind"`
	Tag      string  `json:"tag,omitempty"`    // Element name; empty for text runs
	Widget   string  `json:"widget,omitempty"` // Composite widget name, e.g. "tabs"
	Level    int     `json:"level,omitempty"`  // Heading level
	ID       string  `json:"id,omitempty"`
	Attrs    []Attr  `json:"attrs,omitempty"`
	Text     string  `json:"text,omitempty"` // Text run content
	Children []*Node `json:"children,omitempty"`
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// TextContent concatenates every text run below n.
func (n *Node) TextContent() string {
	var sb strings.Builder
	Walk(n, func(c *Node) bool {
		if c.Kind == KindText {
			sb.WriteString(c.Text)
		}
		return true
	})
	return sb.String()
}

// Tree is the root of a compiled document.
type Tree struct {
	Title    string  `json:"title,omitempty"`
	Children []*Node `json:"children"`
}

// OutlineEntry is one in-page navigation target derived from an h2/h3 heading.
type OutlineEntry struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Label string `json:"label"`
}

// Compiled is the output of a single compile call.
type Compiled struct {
	Tree    *Tree          `json:"tree"`
	Outline []OutlineEntry `json:"outline"`
}

// Walk visits n and its descendants depth-first, stopping a branch when fn returns false.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Find returns every node below the tree's roots matching pred, in document order.
func (t *Tree) Find(pred func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range t.Children {
		Walk(c, func(n *Node) bool {
			if pred(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}
