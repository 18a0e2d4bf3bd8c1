package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
)

// JSONImporter reads a native content record.
type JSONImporter struct{}

func (p *JSONImporter) Import(r io.Reader, filename string) (*doctree.Document, error) {
	var doc doctree.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if doc.ID == "" {
		doc.ID = IDFromFilename(filename)
	}
	if doc.FullTitle == "" {
		doc.FullTitle = baseName(filename)
	}
	return &doc, nil
}

// TextImporter handles plain text files. Blank-line separated paragraphs
// become Markdown paragraphs.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	return newDocument(filename, strings.Join(paragraphs, "\n\n")), nil
}
