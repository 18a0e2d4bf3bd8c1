package markdown

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func convert(t *testing.T, c Converter, src string) string {
	t.Helper()
	out, err := c.Convert([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return string(out)
}

func TestGoldmark_Defaults(t *testing.T) {
	g := NewGoldmark(DefaultOptions())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"soft break becomes br", "a\nb", "a<br>\nb"},
		{"heading without id", "## Hi there", "<h2>Hi there</h2>"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
		{"autolink", "see https://example.com now", `<a href="https://example.com">`},
		{"raw html kept", "<div class=\"x\">y</div>", `<div class="x">y</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convert(t, g, tt.in); !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}
		})
	}
}

func TestGoldmark_SafeModeOmitsHTML(t *testing.T) {
	g := NewGoldmark(Options{})
	got := convert(t, g, "<div>x</div>")
	if strings.Contains(got, "<div>") {
		t.Errorf("expected raw HTML to be omitted, got %q", got)
	}
	if got := convert(t, g, "a\nb"); strings.Contains(got, "<br>") {
		t.Errorf("expected soft break without hard wraps, got %q", got)
	}
}

func TestParseFragment(t *testing.T) {
	root, err := ParseFragment([]byte("<p>one</p>\n<h2>two</h2>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Data != "div" || root.Parent != nil {
		t.Fatalf("expected detached div root, got %q", root.Data)
	}
	var tags []string
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			tags = append(tags, c.Data)
		}
	}
	if strings.Join(tags, ",") != "p,h2" {
		t.Errorf("expected p,h2 children, got %v", tags)
	}
}
