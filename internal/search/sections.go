// Package search cuts compiled documents into heading-anchored sections and
// answers keyword queries over them.
package search

import (
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
)

// Config controls how documents are cut into sections.
type Config struct {
	SectionSize    int // Target section size in tokens.
	SectionOverlap int // Overlap between consecutive pieces of a long section.
	MinSection     int // Minimum section size to emit.
}

func DefaultConfig() Config {
	return Config{
		SectionSize:    300,
		SectionOverlap: 30,
		MinSection:     1,
	}
}

// Section is a searchable slice of a document. Anchor is the id of the h2 or
// h3 that opens it, empty for text before the first heading.
type Section struct {
	DocID      string
	Title      string
	Anchor     string
	Breadcrumb []string
	Text       string
	Index      int
}

// Sections walks the top level of a compiled document and groups block text
// under the nearest outline heading. Long sections are split with overlap.
func Sections(doc *doctree.Document, compiled *doctree.Compiled, cfg Config) []Section {
	if cfg.SectionSize <= 0 {
		cfg.SectionSize = 300
	}
	if cfg.SectionOverlap < 0 {
		cfg.SectionOverlap = 0
	}
	if cfg.MinSection <= 0 {
		cfg.MinSection = 1
	}

	var (
		out        []Section
		paragraphs []string
		anchor     string
		h2, h3     string
	)
	breadcrumb := func() []string {
		var bc []string
		if h2 != "" {
			bc = append(bc, h2)
		}
		if h3 != "" {
			bc = append(bc, h3)
		}
		return bc
	}
	flush := func() {
		text := strings.Join(paragraphs, "\n\n")
		paragraphs = nil
		if text == "" {
			return
		}
		parts := []string{text}
		if EstimateTokens(text) > cfg.SectionSize {
			parts = splitText(text, cfg.SectionSize, cfg.SectionOverlap)
		}
		for _, part := range parts {
			if EstimateTokens(part) < cfg.MinSection {
				continue
			}
			out = append(out, Section{
				DocID:      doc.ID,
				Title:      doc.FullTitle,
				Anchor:     anchor,
				Breadcrumb: breadcrumb(),
				Text:       part,
				Index:      len(out),
			})
		}
	}

	for _, n := range compiled.Tree.Children {
		if n.Kind == doctree.KindHeading && n.ID != "" && (n.Level == 2 || n.Level == 3) {
			flush()
			label := collapse(n.TextContent())
			anchor = n.ID
			if n.Level == 2 {
				h2, h3 = label, ""
			} else {
				h3 = label
			}
			continue
		}
		if text := collapse(n.TextContent()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	flush()
	return out
}

// collapse folds whitespace runs, including newlines, into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitText breaks text into pieces of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range splitByParagraphs(text) {
		paraTokens := EstimateTokens(para)

		// A single oversized paragraph is split by sentences.
		if paraTokens > targetTokens {
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			result = append(result, splitBySentences(para, targetTokens, overlapTokens)...)
			continue
		}

		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			// Start the next piece with overlap from the end of this one.
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range splitSentences(text) {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// getOverlapText extracts the last N tokens worth of text.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}
