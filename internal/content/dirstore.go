package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/markweave/internal/doctree"
)

// DirStore keeps one <id>.json record per document in a directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

func (s *DirStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *DirStore) Get(_ context.Context, id string) (*doctree.Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	var doc doctree.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	doc.ID = id
	return &doc, nil
}

// List returns every record sorted by id. A missing directory is an empty
// store.
func (s *DirStore) List(ctx context.Context) ([]doctree.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	var docs []doctree.Document
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if ValidateID(id) != nil {
			continue
		}
		doc, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	sortByID(docs)
	return docs, nil
}

// Put writes the record through a temp file so readers never see a partial
// file.
func (s *DirStore) Put(_ context.Context, doc *doctree.Document) error {
	if err := ValidateID(doc.ID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", doc.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", doc.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", doc.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(doc.ID)); err != nil {
		return fmt.Errorf("store %s: %w", doc.ID, err)
	}
	return nil
}

func (s *DirStore) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}
