// Package outline assigns ids to level 2 and 3 headings and collects them
// into the in-page outline.
package outline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	quotes     = strings.NewReplacer(`"`, "", "'", "")
	whitespace = regexp.MustCompile(`\s+`)
	nonSlug    = regexp.MustCompile(`[^a-z0-9\-_]`)
)

// Slug lowercases s, strips quotes, turns whitespace runs into hyphens and
// drops everything outside [a-z0-9-_].
func Slug(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = quotes.Replace(s)
	s = whitespace.ReplaceAllString(s, "-")
	return nonSlug.ReplaceAllString(s, "")
}

// Assign sets an id on every h2 and h3 under root, in document order, and
// returns the matching outline entries. A heading whose text yields no slug
// gets section-<n>, n being its position among the outline headings. Repeated
// slugs get -2, -3, ... appended, skipping ids already handed out.
func Assign(root *html.Node) []doctree.OutlineEntry {
	var entries []doctree.OutlineEntry
	used := map[string]bool{}
	counts := map[string]int{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.H2 || c.DataAtom == atom.H3) {
				label := strings.TrimSpace(textContent(c))
				base := Slug(label)
				if base == "" {
					base = fmt.Sprintf("section-%d", len(entries))
				}
				id := base
				for used[id] {
					counts[base]++
					id = base + "-" + strconv.Itoa(counts[base]+1)
				}
				used[id] = true
				setID(c, id)

				level := 2
				if c.DataAtom == atom.H3 {
					level = 3
				}
				entries = append(entries, doctree.OutlineEntry{ID: id, Level: level, Label: label})
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return entries
}

func setID(n *html.Node, id string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" {
			n.Attr[i].Val = id
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
