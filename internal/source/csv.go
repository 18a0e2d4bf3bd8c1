package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
)

// CSVImporter renders a CSV file as a single GFM table. The first row is
// the header.
type CSVImporter struct{}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func (p *CSVImporter) Import(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return newDocument(filename, ""), nil
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = cellEscaper.Replace(strings.TrimSpace(cells[i]))
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(records[0])
	sb.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, rec := range records[1:] {
		writeRow(rec)
	}

	return newDocument(filename, strings.TrimSuffix(sb.String(), "\n")), nil
}
