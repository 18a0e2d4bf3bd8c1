package shortcode

import "regexp"

type inlineToken struct {
	pattern *regexp.Regexp
	repl    string
}

// IconPattern matches an icon token such as (fa)folder-open(/fa).
var IconPattern = regexp.MustCompile(`\(fa\)([\w-]+)\(/fa\)`)

// inlineTokens are single-line rewrites applied last. Their delimiters are
// disjoint, so their relative order does not change the result.
var inlineTokens = []inlineToken{
	{IconPattern, `<i class="fas fa-${1}"></i>`},
	{regexp.MustCompile(`\(color=([#\w]+)\)(.*?)\(/color\)`), `<span style="color: ${1}">${2}</span>`},
	{regexp.MustCompile(`\(highlight=([\w-]+)\)(.*?)\(/highlight\)`), `<mark class="highlight-${1}">${2}</mark>`},
	{regexp.MustCompile(`\(highlight-([\w-]+)\)(.*?)\(/highlight\)`), `<mark class="highlight-${1}">${2}</mark>`},
	{regexp.MustCompile(`\(KBD\)(.*?)\(/KBD\)`), `<kbd>${1}</kbd>`},
	{regexp.MustCompile(`\(FILE\)(.*?)\(/FILE\)`), `<a href="${1}" class="file-link" download><i class="fas fa-download"></i><span>${1}</span></a>`},
	{regexp.MustCompile(`!\[(.*?)\]\((.*?)\)\{\.(big|medium|small)\}`), `<img src="${2}" alt="${1}" class="img-${3}">`},
}

func expandInline(s string) string {
	for _, tok := range inlineTokens {
		s = tok.pattern.ReplaceAllString(s, tok.repl)
	}
	return s
}
