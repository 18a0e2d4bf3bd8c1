package shortcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/markweave/internal/shield"
)

type blockTag struct {
	name    string
	pattern *regexp.Regexp
	render  func(e *expander, a Attrs, body string) (string, bool)
}

// wrap renders a layout-only container around body.
func wrap(format string) func(*expander, Attrs, string) (string, bool) {
	return func(_ *expander, _ Attrs, body string) (string, bool) {
		return fmt.Sprintf(format, body), true
	}
}

var (
	codeBlockTag = pairedTag("CODEBLOCK")
	containerTag = pairedTag("CONTAINER")
	gridTag      = pairedTag("GRID")
	cellTag      = regexp.MustCompile(`(?is)\[CELL\](.*?)\[/CELL\]`)
	hrTag        = regexp.MustCompile(`(?i)\[HR\]`)

	fenceBody      = regexp.MustCompile("(?s)```(\\w+)?\\s*(.*?)\\s*```")
	youTubeID      = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:watch\?v=|embed/|shorts/))([A-Za-z0-9_-]{11})`)
	unsafeFilename = regexp.MustCompile(`(?i)[^a-z0-9_.-]`)
)

// blockTags are applied in order after the code and generic containers.
var blockTags = []blockTag{
	{"INFO", pairedTag("INFO"), wrap("\n<div class=\"info-box\"><i class=\"fas fa-info-circle\"></i><div>%s</div></div>\n")},
	{"WARNING", pairedTag("WARNING"), wrap("\n<div class=\"warning-box\"><i class=\"fas fa-exclamation-triangle\"></i><div>%s</div></div>\n")},
	{"COPY", pairedTag("COPY"), renderCopy},
	{"FILETREE", pairedTag("FILETREE"), wrap("\n<div class=\"file-tree-data-wrapper\">%s</div>\n")},
	{"COLUMNS", pairedTag("COLUMNS"), wrap("\n<div class=\"columns-container\">%s</div>\n")},
	{"COLUMN", pairedTag("COLUMN"), wrap("\n<div class=\"column\">%s</div>\n")},
	{"TABS", pairedTag("TABS"), wrap("\n<div class=\"tabs-container\">%s</div>\n")},
	{"TIMELINE", pairedTag("TIMELINE"), wrap("\n<div class=\"timeline\">%s</div>\n")},
	{"GALLERY", pairedTag("GALLERY"), wrap("\n<div class=\"image-gallery\">%s</div>\n")},
	{"CAROUSEL", pairedTag("CAROUSEL"), wrap("\n<div class=\"carousel-wrapper\">%s</div>\n")},
	{"SLIDE", pairedTag("SLIDE"), wrap("\n<div class=\"carousel-slide\">%s</div>\n")},
	{"DETAILS", pairedTag("DETAILS"), renderDetails},
	{"TAB", pairedTag("TAB"), renderTab},
	{"EVENT", pairedTag("EVENT"), renderEvent},
}

// embedTags run after the grid pass.
var embedTags = []blockTag{
	{"VIDEO", emptyTag("VIDEO"), renderVideo},
	{"AUDIO", emptyTag("AUDIO"), renderAudio},
	{"MAP", emptyTag("MAP"), renderMap},
	{"COUNTDOWN", emptyTag("COUNTDOWN"), renderCountdown},
	{"ANIMATE", pairedTag("ANIMATE"), renderAnimate},
	{"LINK", pairedTag("LINK"), renderLink},
	{"GRADIENT", lineTag("GRADIENT"), renderGradient},
}

func (e *expander) expandCodeBlocks(s string) string {
	return rewrite(codeBlockTag, s, func(g []string) (string, bool) {
		attrs, err := ParseAttrs(g[1])
		if err != nil {
			return "", false
		}
		title, ok := attrs.Required("title")
		if !ok {
			return "", false
		}

		var lang, code string
		if fence, ok := e.text.Block(shield.FindBlock(g[2])); ok {
			if m := fenceBody.FindStringSubmatch(fence); m != nil {
				lang, code = m[1], m[2]
			}
		} else {
			code = strings.TrimSpace(e.text.RestoreString(g[2]))
		}
		return e.text.Protect(renderCodeWidget(title, lang, code)), true
	})
}

func renderCodeWidget(title, lang, code string) string {
	filename := strings.ToLower(unsafeFilename.ReplaceAllString(title, "_"))
	lang = escapeAttr(lang)
	return "\n<div class=\"code-container\">" +
		"<div class=\"code-header\">" +
		"<span class=\"code-title\"><i class=\"fas fa-file-alt\"></i> " + EscapeHTML(title) + "</span>" +
		"<div class=\"code-buttons\">" +
		"<button class=\"copy-code-btn\" title=\"Copy code\"><i class=\"fas fa-copy\"></i></button>" +
		"<button class=\"download-code-btn\" title=\"Download file\" data-filename=\"" + escapeAttr(filename) + "\"><i class=\"fas fa-download\"></i></button>" +
		"</div></div>" +
		"<pre class=\"language-" + lang + "\"><code class=\"language-" + lang + "\">" + escapeCode(code) + "</code></pre>" +
		"</div>\n"
}

// renderCopy shows body verbatim, so shielded code inside it is restored
// first and the finished widget is protected from the inline token pass.
func renderCopy(e *expander, _ Attrs, body string) (string, bool) {
	code := escapeCode(e.text.RestoreString(body))
	html := "\n<div class=\"copy-container\"><pre><code>" + code + "</code></pre>" +
		"<button class=\"copy-button\" title=\"Copy\"><i class=\"fas fa-copy\"></i></button></div>\n"
	return e.text.Protect(html), true
}

func renderDetails(_ *expander, a Attrs, body string) (string, bool) {
	title, ok := a.Required("title")
	if !ok {
		return "", false
	}
	open := ""
	if a.Has("open") {
		open = " open"
	}
	return fmt.Sprintf("\n<details class=\"custom-details\"%s><summary>%s</summary><div class=\"details-content\">%s</div></details>\n",
		open, EscapeHTML(title), body), true
}

// renderTab emits a panel for later assembly; a missing name is synthesized
// from the panel position when the tab group is built.
func renderTab(_ *expander, a Attrs, body string) (string, bool) {
	name := ""
	if v, ok := a.Get("name"); ok {
		name = fmt.Sprintf(" data-name=\"%s\"", nameEscaper.Replace(v))
	}
	return fmt.Sprintf("\n<div class=\"tab-panel-item\"%s>%s</div>\n", name, body), true
}

func renderEvent(_ *expander, a Attrs, body string) (string, bool) {
	date, ok := a.Required("date")
	if !ok {
		return "", false
	}
	active := ""
	if a.Has("open") {
		active = " active"
	}
	return fmt.Sprintf("\n<div class=\"timeline-event%s\"><div class=\"timeline-date\">%s <i class=\"fas fa-chevron-right timeline-arrow\"></i></div><div class=\"timeline-content\">%s</div></div>\n",
		active, EscapeHTML(date), body), true
}

// renderGrid builds the column template from cols: a number repeats that
// many equal columns, anything else is used as a literal track list.
func renderGrid(g []string) (string, bool) {
	attrs, err := ParseAttrs(g[1])
	if err != nil {
		return "", false
	}
	style := ""
	if cols, ok := attrs.Required("cols"); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cols), 64); err == nil {
			style = fmt.Sprintf(" style=\"grid-template-columns: repeat(%s, 1fr);\"", escapeAttr(strings.TrimSpace(cols)))
		} else {
			style = fmt.Sprintf(" style=\"grid-template-columns: %s;\"", escapeAttr(cols))
		}
	}
	cells := cellTag.ReplaceAllString(g[2], `<div class="grid-cell">${1}</div>`)
	return fmt.Sprintf("\n<div class=\"grid-container\"%s>%s</div>\n", style, cells), true
}

func renderVideo(_ *expander, a Attrs, _ string) (string, bool) {
	src, ok := a.Required("src")
	if !ok {
		return "", false
	}
	if m := youTubeID.FindStringSubmatch(src); m != nil {
		return fmt.Sprintf("\n<div class=\"video-container\"><iframe src=\"https://www.youtube.com/embed/%s\" frameborder=\"0\" allow=\"accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture\" allowfullscreen></iframe></div>\n", m[1]), true
	}
	return fmt.Sprintf("\n<div class=\"video-container\"><video controls src=\"%s\" class=\"embedded-video\"></video></div>\n", escapeAttr(src)), true
}

const audioPlayer = "\n<div class=\"audio-player-wrapper\">" +
	"<div class=\"audio-player-title\">%s</div>" +
	"<div class=\"audio-player\">" +
	"<audio class=\"audio-element\" src=\"%s\" preload=\"metadata\"></audio>" +
	"<button class=\"play-pause-btn\"><i class=\"fas fa-play\"></i></button>" +
	"<div class=\"time-container\"><span class=\"current-time\">0:00</span> / <span class=\"total-time\">0:00</span></div>" +
	"<div class=\"progress-bar-container\"><input type=\"range\" class=\"progress-bar\" value=\"0\" min=\"0\" max=\"100\" step=\"0.1\"></div>" +
	"<div class=\"controls-container\">" +
	"<div class=\"volume-container\"><button class=\"volume-btn\"><i class=\"fas fa-volume-high\"></i></button>" +
	"<div class=\"volume-slider-container\"><input type=\"range\" class=\"volume-slider\" value=\"1\" min=\"0\" max=\"1\" step=\"0.01\"></div></div>" +
	"<div class=\"speed-container\"><button class=\"speed-btn\">1x</button><div class=\"speed-options\">" +
	"<button data-speed=\"0.5\">0.5x</button><button data-speed=\"1\">1x</button><button data-speed=\"1.2\">1.2x</button><button data-speed=\"1.5\">1.5x</button><button data-speed=\"2\">2x</button>" +
	"</div></div></div></div></div>\n"

func renderAudio(_ *expander, a Attrs, _ string) (string, bool) {
	src, ok := a.Required("src")
	if !ok {
		return "", false
	}
	title, ok := a.Required("title")
	if !ok {
		return "", false
	}
	return fmt.Sprintf(audioPlayer, EscapeHTML(title), escapeAttr(src)), true
}

func renderMap(_ *expander, a Attrs, _ string) (string, bool) {
	src, ok := a.Required("src")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("\n<div class=\"map-container\"><iframe src=\"%s\" style=\"border:0;\" allowfullscreen=\"\" loading=\"lazy\" referrerpolicy=\"no-referrer-when-downgrade\"></iframe></div>\n", escapeAttr(src)), true
}

func renderCountdown(_ *expander, a Attrs, _ string) (string, bool) {
	date, ok := a.Required("date")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("\n<div class=\"countdown\" data-date=\"%s\"></div>\n", escapeAttr(date)), true
}

// renderAnimate wraps every character in a span carrying its index in --i.
func renderAnimate(e *expander, a Attrs, body string) (string, bool) {
	kind, ok := a.Required("type")
	if !ok {
		return "", false
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "<span class=\"animate-text animate-%s\">", escapeAttr(kind))
	for i, r := range []rune(e.text.RestoreString(body)) {
		ch := EscapeHTML(string(r))
		if r == ' ' {
			ch = "&nbsp;"
		}
		fmt.Fprintf(&sb, "<span style=\"--i:%d\">%s</span>", i, ch)
	}
	sb.WriteString("</span>")
	return sb.String(), true
}

func renderLink(_ *expander, a Attrs, body string) (string, bool) {
	url, ok := a.Required("url")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("<a href=\"%s\" class=\"link-button\" target=\"_blank\" rel=\"noopener noreferrer\"><i class=\"fas fa-arrow-up-right-from-square\"></i><span>%s</span></a>",
		escapeAttr(url), body), true
}

func renderGradient(_ *expander, a Attrs, body string) (string, bool) {
	from, okFrom := a.Required("from")
	to, okTo := a.Required("to")
	if okFrom && okTo {
		return fmt.Sprintf("<span class=\"gradient-text\" style=\"background-image: linear-gradient(45deg, %s, %s);\">%s</span>",
			escapeAttr(from), escapeAttr(to), body), true
	}
	return "<span class=\"gradient-text\">" + body + "</span>", true
}
