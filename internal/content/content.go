// Package content stores and retrieves the raw document records the
// compiler reads.
package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
)

// ErrNotFound is returned when a document id has no record.
var ErrNotFound = errors.New("document not found")

// ErrInvalidID is returned for ids rejected by ValidateID.
var ErrInvalidID = errors.New("invalid document id")

// Repository is a keyed store of document records.
type Repository interface {
	Get(ctx context.Context, id string) (*doctree.Document, error)
	List(ctx context.Context) ([]doctree.Document, error)
	Put(ctx context.Context, doc *doctree.Document) error
	Delete(ctx context.Context, id string) error
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateID rejects ids that could escape a key prefix or directory.
func ValidateID(id string) error {
	if !validID.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}

// Visible reports whether doc is shown under view. The empty view shows
// every document; any other view only shows documents tagged with it.
func Visible(doc doctree.Document, view string) bool {
	if view == "" {
		return true
	}
	return slices.Contains(doc.Views, view)
}

// FilterByView returns the documents visible under view, in input order.
func FilterByView(docs []doctree.Document, view string) []doctree.Document {
	var out []doctree.Document
	for _, d := range docs {
		if Visible(d, view) {
			out = append(out, d)
		}
	}
	return out
}

// Views returns the sorted set of view tags used by docs.
func Views(docs []doctree.Document) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range docs {
		for _, v := range d.Views {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ResolveView returns view when some document uses it, and "" otherwise so
// an unknown view falls back to showing everything.
func ResolveView(docs []doctree.Document, view string) string {
	if view == "" || !slices.Contains(Views(docs), view) {
		return ""
	}
	return view
}

func sortByID(docs []doctree.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
