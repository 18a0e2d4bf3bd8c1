// Package shortcode rewrites the bracket shortcode language ([TAG attr="v"]…[/TAG])
// and the parenthesised inline tokens into HTML that the Markdown stage passes
// through untouched.
//
// Every tag is matched with a case-insensitive, non-greedy regular expression
// over the whole document, one independent pass per tag name. Tags with
// different names therefore nest, but a tag nested inside another tag of the
// same name is cut short at the first closing tag:
//
//	[INFO]a[INFO]b[/INFO]c[/INFO]
//
// expands the outer opener with the body "a[INFO]b" and leaves "c[/INFO]"
// as literal text.
package shortcode

import (
	"regexp"
	"strings"

	"github.com/dgallion1/markweave/internal/shield"
)

// attrList matches a shortcode opener's attribute list. Values may be double-
// or single-quoted (and then contain "]") or bare.
const attrList = `((?:\s+[A-Za-z][\w-]*(?:=(?:"[^"]*"|'[^']*'|[^\s"'\]]+))?)*)\s*`

// pairedTag matches [NAME attrs]body[/NAME]; body may span lines.
func pairedTag(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)\[` + name + attrList + `\](.*?)\[/` + name + `\]`)
}

// emptyTag matches [NAME attrs][/NAME] with only whitespace between.
func emptyTag(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\[` + name + attrList + `\]\s*\[/` + name + `\]`)
}

// lineTag matches [NAME attrs]body[/NAME] with body on a single line.
func lineTag(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\[` + name + attrList + `\](.*?)\[/` + name + `\]`)
}

// expander carries the per-call state of one Expand invocation.
type expander struct {
	text *shield.Text
}

// Expand rewrites every shortcode in t.Text. Code spans must already be
// shielded; the code-container tag resolves its fenced block through t's
// tables and stores its rendered widget there as well. Unmatched or
// malformed shortcodes stay as literal text.
func Expand(t shield.Text) shield.Text {
	e := &expander{text: &t}
	s := t.Text

	s = e.expandCodeBlocks(s)
	s = rewrite(containerTag, s, func(g []string) (string, bool) {
		return "\n<div class=\"container\">" + g[2] + "</div>\n", true
	})
	for _, tag := range blockTags {
		s = e.apply(tag, s)
	}
	s = rewrite(gridTag, s, renderGrid)
	for _, tag := range embedTags {
		s = e.apply(tag, s)
	}
	s = hrTag.ReplaceAllString(s, "\n<hr class=\"styled-divider\">\n")
	s = expandInline(s)

	t.Text = s
	return t
}

func (e *expander) apply(tag blockTag, s string) string {
	return rewrite(tag.pattern, s, func(g []string) (string, bool) {
		attrs, err := ParseAttrs(g[1])
		if err != nil {
			return "", false
		}
		body := ""
		if len(g) > 2 {
			body = g[2]
		}
		return tag.render(e, attrs, body)
	})
}

// rewrite replaces every non-overlapping match of re in s with fn's result.
// When fn declines a match the opener is kept as literal text and scanning
// resumes one byte further, so a valid span starting inside the declined
// one can still match.
func rewrite(re *regexp.Regexp, s string, fn func(groups []string) (string, bool)) string {
	var sb strings.Builder
	pos := 0
	for pos < len(s) {
		loc := re.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[pos+loc[2*i] : pos+loc[2*i+1]]
			}
		}
		out, ok := fn(groups)
		if !ok {
			sb.WriteString(s[pos : start+1])
			pos = start + 1
			continue
		}
		sb.WriteString(s[pos:start])
		sb.WriteString(out)
		pos = end
	}
	sb.WriteString(s[pos:])
	return sb.String()
}
