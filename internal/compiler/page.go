package compiler

import (
	"fmt"
	"io"

	"github.com/dgallion1/markweave/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page writes the display fragment for a compiled document: its title, the
// last-edited line and the content.
func Page(w io.Writer, doc *doctree.Document, compiled *doctree.Compiled) error {
	page := el(atom.Div, "markdown-content-container")

	title := el(atom.H1, "title")
	title.AppendChild(&html.Node{Type: html.TextNode, Data: doc.FullTitle})
	page.AppendChild(title)

	if doc.LastEdited != "" {
		edited := el(atom.P, "last-edited")
		edited.AppendChild(&html.Node{Type: html.TextNode, Data: "Last edited: " + doc.LastEdited})
		page.AppendChild(edited)
	}

	content := el(atom.Div, "markdown-content")
	for _, n := range compiled.Tree.Children {
		content.AppendChild(doctree.ToHTML(n))
	}
	page.AppendChild(content)

	if err := html.Render(w, page); err != nil {
		return fmt.Errorf("render page %s: %w", doc.ID, err)
	}
	return nil
}

func el(a atom.Atom, class string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
}
