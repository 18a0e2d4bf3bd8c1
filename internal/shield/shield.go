// Package shield swaps literal code spans out of a document so that shortcode
// expansion cannot rewrite them, and puts them back afterwards.
package shield

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	blockMark  = "CODEBLOCK"
	inlineMark = "INLINECODE"
)

var (
	fencePattern      = regexp.MustCompile("(?s)```.*?```")
	inlinePattern     = regexp.MustCompile("`[^`]+`")
	blockPlaceholder  = regexp.MustCompile(`%%` + blockMark + `_(\d+)%%`)
	inlinePlaceholder = regexp.MustCompile(`%%` + inlineMark + `_(\d+)%%`)
)

// Text is a document with its code spans replaced by positional placeholders.
type Text struct {
	Text       string
	CodeBlocks []string
	InlineCode []string
}

// Shield extracts fenced blocks first, then inline code runs. Unterminated
// fences or ticks do not match and stay in the text.
func Shield(text string) Text {
	t := Text{}
	text = fencePattern.ReplaceAllStringFunc(text, func(m string) string {
		return t.Protect(m)
	})
	text = inlinePattern.ReplaceAllStringFunc(text, func(m string) string {
		i := len(t.InlineCode)
		t.InlineCode = append(t.InlineCode, m)
		return placeholder(inlineMark, i)
	})
	t.Text = text
	return t
}

// Protect stores literal as a further block entry and returns its placeholder.
func (t *Text) Protect(literal string) string {
	i := len(t.CodeBlocks)
	t.CodeBlocks = append(t.CodeBlocks, literal)
	return placeholder(blockMark, i)
}

// Block returns the literal stored behind a block placeholder.
func (t Text) Block(ph string) (string, bool) {
	return lookup(blockPlaceholder, ph, t.CodeBlocks)
}

// Restore puts every stored literal back, inline code before blocks.
func (t Text) Restore() string {
	return t.RestoreString(t.Text)
}

// RestoreString restores the placeholders found in s, which is usually a
// fragment of t.Text.
func (t Text) RestoreString(s string) string {
	s = restore(inlinePlaceholder, s, t.InlineCode)
	return restore(blockPlaceholder, s, t.CodeBlocks)
}

// FindBlock returns the first block placeholder in s.
func FindBlock(s string) string {
	return blockPlaceholder.FindString(s)
}

func placeholder(mark string, i int) string {
	return fmt.Sprintf("%%%%%s_%d%%%%", mark, i)
}

func restore(re *regexp.Regexp, s string, table []string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		if lit, ok := lookup(re, m, table); ok {
			return lit
		}
		return m
	})
}

func lookup(re *regexp.Regexp, m string, table []string) (string, bool) {
	sub := re.FindStringSubmatch(m)
	if sub == nil {
		return "", false
	}
	i, err := strconv.Atoi(sub[1])
	if err != nil || i < 0 || i >= len(table) {
		return "", false
	}
	return table[i], true
}
