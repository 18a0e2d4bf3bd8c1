package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLImporter converts an HTML page into Markdown blocks: headings,
// paragraphs, list items, quotes and preformatted code.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) (*doctree.Document, error) {
	page, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.DataAtom); level > 0 {
				if t := collapse(textContent(n)); t != "" {
					blocks = append(blocks, strings.Repeat("#", level)+" "+t)
				}
				return
			}
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Header, atom.Title:
				return
			case atom.Pre:
				code := strings.Trim(textContent(n), "\n")
				if code != "" {
					blocks = append(blocks, "```\n"+code+"\n```")
				}
				return
			case atom.Li:
				if t := collapse(textContent(n)); t != "" {
					blocks = append(blocks, "- "+t)
				}
				return
			case atom.Blockquote:
				if t := collapse(textContent(n)); t != "" {
					blocks = append(blocks, "> "+t)
				}
				return
			case atom.P, atom.Td, atom.Th:
				if t := collapse(textContent(n)); t != "" {
					blocks = append(blocks, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := findElement(page, atom.Body); body != nil {
		walk(body)
	} else {
		walk(page)
	}

	doc := newDocument(filename, joinBlocks(blocks))
	if title := findElement(page, atom.Title); title != nil {
		if t := collapse(textContent(title)); t != "" {
			doc.FullTitle = t
		}
	}
	return doc, nil
}

// joinBlocks separates blocks with blank lines, except that consecutive
// list items stay in one list.
func joinBlocks(blocks []string) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			if strings.HasPrefix(b, "- ") && strings.HasPrefix(blocks[i-1], "- ") {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(b)
	}
	return sb.String()
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

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// collapse folds whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
