package doctree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// widgetClasses maps the marker class emitted by the shortcode expander to a widget name.
var widgetClasses = map[string]string{
	"tabs-container":       "tabs",
	"carousel-wrapper":     "carousel",
	"image-gallery":        "gallery",
	"timeline":             "timeline",
	"file-tree":            "tree",
	"audio-player-wrapper": "audio-player",
	"grid-container":       "grid",
	"code-container":       "code",
	"copy-container":       "copy",
	"custom-details":       "details",
	"video-container":      "video",
	"map-container":        "map",
	"countdown":            "countdown",
}

var inlineTags = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Br: true, atom.Button: true,
	atom.Code: true, atom.Del: true, atom.Em: true, atom.I: true, atom.Iframe: true,
	atom.Img: true, atom.Input: true, atom.Kbd: true, atom.Label: true, atom.Mark: true,
	atom.S: true, atom.Small: true, atom.Span: true, atom.Strong: true, atom.Sub: true,
	atom.Sup: true, atom.U: true, atom.Audio: true, atom.Video: true,
}

// FromHTML converts the children of a parsed fragment root into structural nodes.
// Comments and doctype nodes carry no content and are dropped.
func FromHTML(root *html.Node) []*Node {
	var out []*Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := fromHTMLNode(c); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func fromHTMLNode(h *html.Node) *Node {
	switch h.Type {
	case html.TextNode:
		return &Node{Kind: KindText, Text: h.Data}
	case html.ElementNode:
	default:
		return nil
	}

	n := &Node{Tag: h.Data, Kind: classify(h)}
	for _, a := range h.Attr {
		n.Attrs = append(n.Attrs, Attr{Key: a.Key, Val: a.Val})
		if a.Key == "id" {
			n.ID = a.Val
		}
	}
	if n.Kind == KindHeading {
		n.Level = headingLevel(h.DataAtom)
	}
	if n.Kind == KindWidget {
		n.Widget = widgetName(h)
	}
	n.Children = FromHTML(h)
	return n
}

func classify(h *html.Node) Kind {
	if headingLevel(h.DataAtom) > 0 {
		return KindHeading
	}
	if widgetName(h) != "" {
		return KindWidget
	}
	switch {
	case h.DataAtom == atom.P:
		return KindParagraph
	case h.DataAtom == atom.Pre:
		return KindCodeBlock
	case inlineTags[h.DataAtom]:
		return KindInline
	}
	return KindContainer
}

func widgetName(h *html.Node) string {
	for _, a := range h.Attr {
		if a.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(a.Val) {
			if w, ok := widgetClasses[cls]; ok {
				return w
			}
		}
	}
	return ""
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// ToHTML converts a structural node back into an x/net/html node.
func ToHTML(n *Node) *html.Node {
	if n.Kind == KindText {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	h := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	for _, a := range n.Attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children {
		h.AppendChild(ToHTML(c))
	}
	return h
}

// Render serializes nodes as HTML.
func Render(w io.Writer, nodes []*Node) error {
	for _, n := range nodes {
		if err := html.Render(w, ToHTML(n)); err != nil {
			return fmt.Errorf("render %s: %w", n.Kind, err)
		}
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(nodes []*Node) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, nodes); err != nil {
		return "", err
	}
	return sb.String(), nil
}
