package shortcode

import (
	"strings"
	"testing"

	"github.com/dgallion1/markweave/internal/shield"
)

func expand(s string) string {
	return Expand(shield.Shield(s)).Restore()
}

func TestParseAttrs(t *testing.T) {
	a, err := ParseAttrs(` title="My file.go" open Name='x' title=other`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.Value("title"); got != "My file.go" {
		t.Errorf("expected %q, got %q", "My file.go", got)
	}
	if got := a.Value("name"); got != "x" {
		t.Errorf("expected lowercased key with value %q, got %q", "x", got)
	}
	if !a.Has("open") {
		t.Error("expected open flag to be present")
	}
	if _, ok := a.Required("open"); ok {
		t.Error("expected empty flag not to satisfy Required")
	}
	if a.Has("missing") {
		t.Error("expected missing attribute to be absent")
	}
}

func TestParseAttrs_Unbalanced(t *testing.T) {
	if _, err := ParseAttrs(` title="oops`); err == nil {
		t.Error("expected error for unterminated quote")
	}
}

func TestParseAttrs_LiteralBackslashes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{` title="C:\"`, `C:\`},
		{` title="a\\b"`, `a\\b`},
		{` title='x\y'`, `x\y`},
		{` title=dir\file`, `dir\file`},
	}
	for _, tt := range tests {
		a, err := ParseAttrs(tt.in)
		if err != nil {
			t.Errorf("ParseAttrs(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got := a.Value("title"); got != tt.want {
			t.Errorf("ParseAttrs(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestExpand_DetailsTitleTrailingBackslash(t *testing.T) {
	got := expand(`[DETAILS title="C:\"]x[/DETAILS]`)
	if !strings.Contains(got, `<summary>C:\</summary>`) {
		t.Errorf("expected details titled C:\\, got %q", got)
	}
}

func TestExpand_SameTagNestingTruncates(t *testing.T) {
	got := expand("[INFO]a[INFO]b[/INFO]c[/INFO]")
	want := "\n<div class=\"info-box\"><i class=\"fas fa-info-circle\"></i><div>a[INFO]b</div></div>\nc[/INFO]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExpand_DifferentTagsNest(t *testing.T) {
	got := expand("[WARNING][INFO]x[/INFO][/WARNING]")
	if !strings.Contains(got, `<div class="warning-box">`) || !strings.Contains(got, `<div class="info-box">`) {
		t.Errorf("expected both callouts, got %q", got)
	}
	if strings.Contains(got, "[INFO]") || strings.Contains(got, "[/WARNING]") {
		t.Errorf("expected no literal tags left, got %q", got)
	}
}

func TestExpand_CaseInsensitive(t *testing.T) {
	got := expand("[info]x[/Info]")
	if !strings.Contains(got, `<div class="info-box">`) {
		t.Errorf("expected info box, got %q", got)
	}
}

func TestExpand_CodeInsideSpanNotExpanded(t *testing.T) {
	for _, in := range []string{
		"`[INFO]x[/INFO]`",
		"```\n[WARNING]y[/WARNING]\n(fa)home(/fa)\n```",
	} {
		if got := expand(in); got != in {
			t.Errorf("expected %q untouched, got %q", in, got)
		}
	}
}

func TestExpand_CodeBlockWithFence(t *testing.T) {
	in := "[CODEBLOCK title=\"Main Go.go\"]\n```go\nfmt.Println(\"<x>\")\n\n(fa)x(/fa)\n```\n[/CODEBLOCK]"
	got := expand(in)

	for _, want := range []string{
		`<div class="code-container">`,
		`<i class="fas fa-file-alt"></i> Main Go.go</span>`,
		`data-filename="main_go.go"`,
		`<pre class="language-go"><code class="language-go">`,
		`fmt.Println("&lt;x&gt;")&#10;&#10;(fa)x(/fa)</code></pre>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "```") {
		t.Errorf("expected fence to be consumed, got %q", got)
	}
}

func TestExpand_CodeBlockWithoutFence(t *testing.T) {
	got := expand("[CODEBLOCK title=run.sh]  echo <hi> `x`  [/CODEBLOCK]")
	if !strings.Contains(got, "<code class=\"language-\">echo &lt;hi&gt; `x`</code>") {
		t.Errorf("expected trimmed escaped body, got %q", got)
	}
}

func TestExpand_CodeBlockWithoutTitleIsLiteral(t *testing.T) {
	in := "[CODEBLOCK]\n```\nx\n```\n[/CODEBLOCK]"
	if got := expand(in); got != in {
		t.Errorf("expected %q untouched, got %q", in, got)
	}
}

func TestExpand_Container(t *testing.T) {
	got := expand("[CONTAINER]x[/CONTAINER]")
	if got != "\n<div class=\"container\">x</div>\n" {
		t.Errorf("unexpected container %q", got)
	}
}

func TestExpand_Copy(t *testing.T) {
	got := expand("[COPY]a <b> `c` (fa)x(/fa)\nnext[/COPY]")
	want := "<pre><code>a &lt;b&gt; `c` (fa)x(/fa)&#10;next</code></pre>"
	if !strings.Contains(got, want) {
		t.Errorf("expected %q in %q", want, got)
	}
}

func TestExpand_TabNameEncoding(t *testing.T) {
	got := expand(`[TABS][TAB name="Go (fa)star(/fa)"]x[/TAB][TAB]y[/TAB][/TABS]`)
	if !strings.Contains(got, `data-name="Go &#40;fa&#41;star&#40;/fa&#41;"`) {
		t.Errorf("expected encoded tab name, got %q", got)
	}
	if !strings.Contains(got, "<div class=\"tab-panel-item\">y</div>") {
		t.Errorf("expected unnamed panel, got %q", got)
	}
	if strings.Contains(got, "fa-star") {
		t.Errorf("expected icon token in name left for tab assembly, got %q", got)
	}
}

func TestExpand_DetailsAndEvent(t *testing.T) {
	got := expand(`[DETAILS title="More <info>" open]body[/DETAILS]`)
	want := `<details class="custom-details" open><summary>More &lt;info&gt;</summary><div class="details-content">body</div></details>`
	if !strings.Contains(got, want) {
		t.Errorf("expected %q in %q", want, got)
	}

	got = expand(`[EVENT date="2024" open]x[/EVENT]`)
	if !strings.Contains(got, `<div class="timeline-event active"><div class="timeline-date">2024 `) {
		t.Errorf("unexpected event %q", got)
	}
}

func TestExpand_MissingRequiredAttributeIsLiteral(t *testing.T) {
	for _, in := range []string{
		"[EVENT]x[/EVENT]",
		"[DETAILS]x[/DETAILS]",
		"[VIDEO][/VIDEO]",
		`[AUDIO src="a.mp3"][/AUDIO]`,
		"[LINK]x[/LINK]",
	} {
		if got := expand(in); got != in {
			t.Errorf("expected %q untouched, got %q", in, got)
		}
	}
}

func TestExpand_DeclinedOpenerLetsLaterSpanMatch(t *testing.T) {
	got := expand("[EVENT]a[/EVENT] [EVENT date=d]b[/EVENT]")
	if !strings.HasPrefix(got, "[EVENT]a[/EVENT] ") {
		t.Errorf("expected first event literal, got %q", got)
	}
	if !strings.Contains(got, `<div class="timeline-content">b</div>`) {
		t.Errorf("expected second event expanded, got %q", got)
	}
}

func TestExpand_Grid(t *testing.T) {
	got := expand(`[GRID cols="3"][CELL]a[/CELL][CELL]b[/CELL][/GRID]`)
	want := "\n<div class=\"grid-container\" style=\"grid-template-columns: repeat(3, 1fr);\"><div class=\"grid-cell\">a</div><div class=\"grid-cell\">b</div></div>\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got = expand(`[GRID cols="1fr 2fr"][CELL]a[/CELL][/GRID]`)
	if !strings.Contains(got, `style="grid-template-columns: 1fr 2fr;"`) {
		t.Errorf("expected literal track list, got %q", got)
	}
}

func TestExpand_Embeds(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[VIDEO src="https://youtu.be/dQw4w9WgXcQ"][/VIDEO]`, `src="https://www.youtube.com/embed/dQw4w9WgXcQ"`},
		{`[VIDEO src="clip.mp4"][/VIDEO]`, `<video controls src="clip.mp4" class="embedded-video">`},
		{`[AUDIO src="a.mp3" title="Song & Dance"][/AUDIO]`, `<div class="audio-player-title">Song &amp; Dance</div>`},
		{`[MAP src="https://maps.example/x"][/MAP]`, `<div class="map-container"><iframe src="https://maps.example/x"`},
		{`[COUNTDOWN date="2030-01-01"][/COUNTDOWN]`, `<div class="countdown" data-date="2030-01-01"></div>`},
		{`[ANIMATE type=wave]a b[/ANIMATE]`, `<span class="animate-text animate-wave"><span style="--i:0">a</span><span style="--i:1">&nbsp;</span><span style="--i:2">b</span></span>`},
		{`[LINK url="https://x.example"]Go[/LINK]`, `<a href="https://x.example" class="link-button" target="_blank" rel="noopener noreferrer">`},
		{`[GRADIENT from=red to=blue]hi[/GRADIENT]`, `linear-gradient(45deg, red, blue);">hi</span>`},
		{`[GRADIENT]hi[/GRADIENT]`, `<span class="gradient-text">hi</span>`},
		{"x\n[HR]\ny", "x\n\n<hr class=\"styled-divider\">\n\ny"},
	}
	for _, tt := range tests {
		if got := expand(tt.in); !strings.Contains(got, tt.want) {
			t.Errorf("expand(%q): expected %q in %q", tt.in, tt.want, got)
		}
	}
}

func TestExpand_AttributeEscaping(t *testing.T) {
	got := expand(`[COUNTDOWN date='"><script>'][/COUNTDOWN]`)
	if strings.Contains(got, "<script>") {
		t.Errorf("expected attribute value escaped, got %q", got)
	}
}

func TestExpand_InlineTokens(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(fa)house-user(/fa)", `<i class="fas fa-house-user"></i>`},
		{"(color=#f00)red(/color)", `<span style="color: #f00">red</span>`},
		{"(highlight=yellow)x(/highlight)", `<mark class="highlight-yellow">x</mark>`},
		{"(highlight-yellow)x(/highlight)", `<mark class="highlight-yellow">x</mark>`},
		{"(KBD)Ctrl(/KBD)", `<kbd>Ctrl</kbd>`},
		{"(FILE)docs/a.pdf(/FILE)", `<a href="docs/a.pdf" class="file-link" download><i class="fas fa-download"></i><span>docs/a.pdf</span></a>`},
		{"![cat](c.png){.big}", `<img src="c.png" alt="cat" class="img-big">`},
		{"![cat](c.png)", `![cat](c.png)`},
	}
	for _, tt := range tests {
		if got := expand(tt.in); got != tt.want {
			t.Errorf("expand(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestExpand_UnknownTagIsLiteral(t *testing.T) {
	in := "[NOPE]x[/NOPE] and [INFO]unclosed"
	if got := expand(in); got != in {
		t.Errorf("expected %q untouched, got %q", in, got)
	}
}
