// Package compiler turns a document's raw text into its structural tree and
// outline. A Compiler keeps no per-document state and is safe for
// concurrent use.
package compiler

import (
	"fmt"

	"github.com/dgallion1/markweave/internal/doctree"
	"github.com/dgallion1/markweave/internal/markdown"
	"github.com/dgallion1/markweave/internal/normalize"
	"github.com/dgallion1/markweave/internal/outline"
	"github.com/dgallion1/markweave/internal/shield"
	"github.com/dgallion1/markweave/internal/shortcode"
	"golang.org/x/net/html"
)

// Compiler runs the compile passes in their fixed order.
type Compiler struct {
	converter markdown.Converter
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithConverter replaces the Markdown step.
func WithConverter(c markdown.Converter) Option {
	return func(cc *Compiler) { cc.converter = c }
}

// WithMarkdownOptions builds the goldmark step from opts.
func WithMarkdownOptions(opts markdown.Options) Option {
	return func(cc *Compiler) { cc.converter = markdown.NewGoldmark(opts) }
}

func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, o := range opts {
		o(c)
	}
	if c.converter == nil {
		c.converter = markdown.NewGoldmark(markdown.DefaultOptions())
	}
	return c
}

var defaultCompiler = New()

// Compile uses a Compiler with default options.
func Compile(raw string) (*doctree.Compiled, error) {
	return defaultCompiler.Compile(raw)
}

// Compile shields code spans, expands shortcodes, restores the code, runs the
// Markdown step and normalizes the resulting tree. Malformed shortcodes never
// fail a compile; they stay in the output as text.
func (c *Compiler) Compile(raw string) (*doctree.Compiled, error) {
	root, entries, err := c.compileHTML(raw)
	if err != nil {
		return nil, err
	}
	return &doctree.Compiled{
		Tree:    &doctree.Tree{Children: doctree.FromHTML(root)},
		Outline: entries,
	}, nil
}

// CompileDocument compiles doc's text and titles the tree after it.
func (c *Compiler) CompileDocument(doc *doctree.Document) (*doctree.Compiled, error) {
	out, err := c.Compile(doc.RawText)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", doc.ID, err)
	}
	out.Tree.Title = doc.FullTitle
	return out, nil
}

func (c *Compiler) compileHTML(raw string) (*html.Node, []doctree.OutlineEntry, error) {
	text := shortcode.Expand(shield.Shield(raw))

	rendered, err := c.converter.Convert([]byte(text.Restore()))
	if err != nil {
		return nil, nil, err
	}
	root, err := markdown.ParseFragment(rendered)
	if err != nil {
		return nil, nil, err
	}

	normalize.Run(root)
	return root, outline.Assign(root), nil
}
