package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/source"
)

// handleImport converts an uploaded file into a document and stores it.
// Optional form fields id, title, sidebar_title and views (comma separated)
// override what the importer derived.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	importer, err := source.ForFile(filename, source.WithPDFFallback(s.cfg.PDFFallbackPdftotext))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := importer.Import(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Error("import failed", "filename", filename, "error", err)
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if v := r.FormValue("id"); v != "" {
		doc.ID = v
	}
	if v := r.FormValue("title"); v != "" {
		doc.FullTitle = v
	}
	if v := r.FormValue("sidebar_title"); v != "" {
		doc.SidebarTitle = v
	}
	if v := r.FormValue("views"); v != "" {
		doc.Views = splitList(v)
	}
	if err := content.ValidateID(doc.ID); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.repo.Put(r.Context(), doc); err != nil {
		repoError(w, err)
		return
	}
	s.orchestrator.Cache().Invalidate(doc.ID)
	s.log.Info("document imported", "doc_id", doc.ID, "filename", filename, "bytes", len(data))

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        doc.ID,
		"fullTitle": doc.FullTitle,
		"url":       fmt.Sprintf("/api/documents/%s", doc.ID),
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
