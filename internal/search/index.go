package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Hit is one matching section.
type Hit struct {
	DocID      string   `json:"id"`
	Title      string   `json:"fullTitle"`
	Anchor     string   `json:"anchor,omitempty"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	Snippet    string   `json:"snippet"`
	Score      int      `json:"score"`
}

// headingWeight multiplies term hits in the title and breadcrumb.
const headingWeight = 3

const (
	snippetBefore = 60
	snippetAfter  = 140
)

type entry struct {
	section Section
	body    map[string]int
	heading map[string]int
}

// Index is an in-memory keyword index over sections. It is not safe for
// concurrent Add and Search.
type Index struct {
	entries []entry
}

func NewIndex() *Index {
	return &Index{}
}

func countTerms(text string) map[string]int {
	counts := map[string]int{}
	for _, t := range Terms(text) {
		counts[t]++
	}
	return counts
}

func (ix *Index) Add(sections ...Section) {
	for _, s := range sections {
		ix.entries = append(ix.entries, entry{
			section: s,
			body:    countTerms(s.Text),
			heading: countTerms(s.Title + " " + strings.Join(s.Breadcrumb, " ")),
		})
	}
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns sections containing every query term, best first. Ties keep
// document order. A limit of zero or less returns all hits.
func (ix *Index) Search(query string, limit int) []Hit {
	terms := uniqueTerms(query)
	if len(terms) == 0 {
		return nil
	}
	match := termPattern(terms)

	var hits []Hit
	for _, e := range ix.entries {
		score := 0
		for _, t := range terms {
			n := e.body[t] + headingWeight*e.heading[t]
			if n == 0 {
				score = 0
				break
			}
			score += n
		}
		if score == 0 {
			continue
		}
		hits = append(hits, Hit{
			DocID:      e.section.DocID,
			Title:      e.section.Title,
			Anchor:     e.section.Anchor,
			Breadcrumb: e.section.Breadcrumb,
			Snippet:    snippet(e.section.Text, match),
			Score:      score,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func uniqueTerms(query string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range Terms(query) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func termPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// snippet cuts a window of text around the first match, widened to word
// boundaries. A section matched only through its headings yields its start.
func snippet(text string, match *regexp.Regexp) string {
	at := 0
	if loc := match.FindStringIndex(text); loc != nil {
		at = loc[0]
	}
	start := max(at-snippetBefore, 0)
	end := min(at+snippetAfter, len(text))

	if start > 0 {
		if i := strings.IndexByte(text[start:at], ' '); i >= 0 {
			start += i + 1
		}
		for start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
	}
	if end < len(text) {
		if i := strings.LastIndexByte(text[at:end], ' '); i > 0 {
			end = at + i
		}
		for end > start && end < len(text) && !utf8.RuneStart(text[end]) {
			end--
		}
	}

	s := strings.ReplaceAll(text[start:end], "\n\n", " ")
	if start > 0 {
		s = "…" + s
	}
	if end < len(text) {
		s += "…"
	}
	return s
}
