// Package normalize applies the structural fixups that turn goldmark's HTML
// output into the final widget markup: paragraph unwrapping, tab assembly,
// file trees, copyable quotes, link hardening and gallery images.
//
// Every pass is idempotent, so running Run twice yields the same tree.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Run rewrites the tree under root in place.
func Run(root *html.Node) {
	unwrapParagraphs(root)
	assembleTabs(root)
	buildFileTrees(root)
	wrapCopyableQuotes(root)
	hardenLinks(root)
	unwrapGalleryImages(root)
}

// unwrapClasses name the containers whose lone paragraph is dropped.
var unwrapClasses = []string{
	"timeline-content", "column", "tab-panel-item", "details-content", "grid-cell", "carousel-slide",
}

func unwrapTarget(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	// .info-box > div, .warning-box > div
	if n.DataAtom == atom.Div && n.Parent != nil && (hasClass(n.Parent, "info-box") || hasClass(n.Parent, "warning-box")) {
		return true
	}
	for _, c := range unwrapClasses {
		if hasClass(n, c) {
			return true
		}
	}
	return false
}

func unwrapParagraphs(root *html.Node) {
	for _, n := range findAll(root, unwrapTarget) {
		for {
			p := soleChild(n)
			if !isElement(p, atom.P) {
				break
			}
			detachChildren(n)
			appendAll(n, detachChildren(p))
		}
	}
}

// soleChild returns the only child of n that is not whitespace or a comment.
func soleChild(n *html.Node) *html.Node {
	var only *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlank(c) {
			continue
		}
		if only != nil {
			return nil
		}
		only = c
	}
	return only
}

var httpLink = regexp.MustCompile(`(?i)^https?://`)

func hardenLinks(root *html.Node) {
	for _, a := range findAll(root, func(n *html.Node) bool { return isElement(n, atom.A) }) {
		href, ok := getAttr(a, "href")
		if !ok || !httpLink.MatchString(href) {
			continue
		}
		setAttrIfAbsent(a, "target", "_blank")
		setAttrIfAbsent(a, "rel", "noopener noreferrer")
	}
}

func unwrapGalleryImages(root *html.Node) {
	for _, g := range findAll(root, func(n *html.Node) bool { return hasClass(n, "image-gallery") }) {
		for _, p := range findAll(g, func(n *html.Node) bool { return isElement(n, atom.P) }) {
			img := p.FirstChild
			if img != nil && img == p.LastChild && isElement(img, atom.Img) {
				replace(p, img)
			}
		}
	}
}

// wrapCopyableQuotes handles a blockquote whose first line reads "copyable":
// the marker line is removed and the quote is wrapped in a copy widget.
func wrapCopyableQuotes(root *html.Node) {
	for _, bq := range findAll(root, func(n *html.Node) bool { return isElement(n, atom.Blockquote) }) {
		p := findFirst(bq, func(n *html.Node) bool { return isElement(n, atom.P) })
		if p == nil || !stripMarkerLine(p, "copyable") {
			continue
		}
		if allBlank(p) {
			p.Parent.RemoveChild(p)
		}

		wrapper := element(atom.Div, "class", "copy-container")
		button := element(atom.Button, "class", "copy-button", "title", "Copy")
		button.AppendChild(element(atom.I, "class", "fas fa-copy"))
		bq.Parent.InsertBefore(wrapper, bq)
		bq.Parent.RemoveChild(bq)
		wrapper.AppendChild(bq)
		wrapper.AppendChild(button)
	}
}

// stripMarkerLine removes the first line of p, up to and including its first
// <br>, when that line trims to marker.
func stripMarkerLine(p *html.Node, marker string) bool {
	var line []*html.Node
	var br *html.Node
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Br) {
			br = c
			break
		}
		line = append(line, c)
	}
	var sb strings.Builder
	for _, n := range line {
		sb.WriteString(textContent(n))
	}
	if strings.TrimSpace(sb.String()) != marker {
		return false
	}
	for _, n := range line {
		p.RemoveChild(n)
	}
	if br != nil {
		next := br.NextSibling
		p.RemoveChild(br)
		if next != nil && next.Type == html.TextNode {
			next.Data = strings.TrimLeft(next.Data, "\r\n")
		}
	}
	return true
}

func allBlank(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isBlank(c) {
			return false
		}
	}
	return true
}
