package shortcode

import "strings"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	// Parentheses are encoded so inline tokens inside an attribute value are
	// not rewritten; the HTML parser decodes them back.
	nameEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "(", "&#40;", ")", "&#41;")
	codeEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r\n", "&#10;", "\n", "&#10;")
)

// EscapeHTML escapes the three characters that matter in text content.
func EscapeHTML(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// escapeCode escapes code for a <pre> body and encodes newlines as character
// references so that blank lines cannot end the surrounding raw HTML block.
func escapeCode(s string) string {
	return codeEscaper.Replace(s)
}
