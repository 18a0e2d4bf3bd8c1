// Package source imports files of various formats as content documents whose
// raw text is Markdown the compiler understands.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
)

// Importer converts raw file bytes into a Document.
type Importer interface {
	Import(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

type options struct {
	pdfFallback bool
}

// Option tunes the importer returned by ForFile.
type Option func(*options)

// WithPDFFallback lets the PDF importer shell out to pdftotext when the Go
// reader fails.
func WithPDFFallback(enabled bool) Option {
	return func(o *options) { o.pdfFallback = enabled }
}

// ForFile returns the importer for a filename's extension.
func ForFile(filename string, opts ...Option) (Importer, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONImporter{}, nil
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: o.pdfFallback}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// baseName strips directories and the extension.
func baseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IDFromFilename derives a document id from a filename.
func IDFromFilename(filename string) string {
	id := strings.Trim(unsafeID.ReplaceAllString(baseName(filename), "-"), "-.")
	if id == "" {
		return "document"
	}
	return id
}

// newDocument fills the id and title every importer derives from the name.
func newDocument(filename, text string) *doctree.Document {
	return &doctree.Document{
		ID:        IDFromFilename(filename),
		FullTitle: baseName(filename),
		RawText:   text,
	}
}
