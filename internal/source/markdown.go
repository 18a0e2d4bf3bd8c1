package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/dgallion1/markweave/internal/doctree"
)

// MarkdownImporter reads Markdown with optional YAML or TOML front matter.
type MarkdownImporter struct{}

type frontMatter struct {
	Title        string   `yaml:"title" toml:"title"`
	SidebarTitle string   `yaml:"sidebar_title" toml:"sidebar_title"`
	LastEdited   string   `yaml:"last_edited" toml:"last_edited"`
	Views        []string `yaml:"views" toml:"views"`
}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (*doctree.Document, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	doc := newDocument(filename, strings.TrimLeft(string(body), "\r\n"))
	if meta.Title != "" {
		doc.FullTitle = meta.Title
	}
	doc.SidebarTitle = meta.SidebarTitle
	doc.LastEdited = meta.LastEdited
	doc.Views = meta.Views
	return doc, nil
}
