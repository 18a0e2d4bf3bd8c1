// Package markdown wraps goldmark as the Markdown step of the compiler and
// parses its HTML output into a node tree.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Converter turns Markdown into HTML.
type Converter interface {
	Convert(src []byte) ([]byte, error)
}

// Options selects the goldmark extensions and renderer behaviour.
type Options struct {
	// Extensions by name, see extensionRegistry. Empty means GFM.
	Extensions []string
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// Unsafe passes raw HTML through. Shortcode output depends on it.
	Unsafe bool
}

// DefaultOptions is GFM with hard wraps and raw HTML passthrough. Headings
// get no generated ids.
func DefaultOptions() Options {
	return Options{
		Extensions: []string{"gfm"},
		HardWraps:  true,
		Unsafe:     true,
	}
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"footnote":      extension.Footnote,
}

// Goldmark is a Converter backed by a single goldmark engine. The engine
// holds no per-document state, so one instance serves concurrent callers.
type Goldmark struct {
	engine goldmark.Markdown
}

// NewGoldmark builds the engine once. Unknown extension names are ignored.
func NewGoldmark(opts Options) *Goldmark {
	var exts []goldmark.Extender
	seen := map[string]bool{}
	names := opts.Extensions
	if len(names) == 0 {
		names = []string{"gfm"}
	}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if ext, ok := extensionRegistry[key]; ok && !seen[key] {
			seen[key] = true
			exts = append(exts, ext)
		}
	}

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, gmhtml.WithUnsafe())
	}

	engineOptions := []goldmark.Option{goldmark.WithExtensions(exts...)}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return &Goldmark{engine: goldmark.New(engineOptions...)}
}

func (g *Goldmark) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.engine.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseFragment parses an HTML fragment into the children of a detached
// <div> root.
func ParseFragment(b []byte) (*html.Node, error) {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(bytes.NewReader(b), root)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}
