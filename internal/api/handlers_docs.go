package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/doctree"
	"github.com/go-chi/chi/v5"
)

// documentSummary is a document as listed in navigation, without content.
type documentSummary struct {
	ID           string   `json:"id"`
	FullTitle    string   `json:"fullTitle"`
	SidebarTitle string   `json:"sidebarTitle,omitempty"`
	LastEdited   string   `json:"lastEdited,omitempty"`
	Views        []string `json:"views,omitempty"`
}

// documentResponse is a compiled document.
type documentResponse struct {
	ID           string                 `json:"id"`
	FullTitle    string                 `json:"fullTitle"`
	SidebarTitle string                 `json:"sidebarTitle,omitempty"`
	LastEdited   string                 `json:"lastEdited,omitempty"`
	Tree         *doctree.Tree          `json:"tree"`
	Outline      []doctree.OutlineEntry `json:"outline"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// repoError maps repository errors onto status codes.
func repoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, content.ErrInvalidID):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

// requestView returns the view named by the query, falling back to the
// configured default.
func (s *Server) requestView(r *http.Request) string {
	if v := r.URL.Query().Get("view"); v != "" {
		return v
	}
	return s.cfg.DefaultView
}

// handleListDocuments lists the documents visible under the requested view.
// Unknown views show everything.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.repo.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	view := content.ResolveView(docs, s.requestView(r))

	out := []documentSummary{}
	for _, d := range content.FilterByView(docs, view) {
		out = append(out, documentSummary{
			ID:           d.ID,
			FullTitle:    d.FullTitle,
			SidebarTitle: d.SidebarTitle,
			LastEdited:   d.LastEdited,
			Views:        d.Views,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": view, "documents": out})
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	docs, err := s.repo.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	views := content.Views(docs)
	if views == nil {
		views = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"views": views})
}

// loadCompiled fetches and compiles a document, writing the error response
// itself when that fails.
func (s *Server) loadCompiled(w http.ResponseWriter, r *http.Request) (*doctree.Document, *doctree.Compiled, bool) {
	doc, err := s.repo.Get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		repoError(w, err)
		return nil, nil, false
	}
	if view := r.URL.Query().Get("view"); view != "" && !content.Visible(*doc, view) {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, nil, false
	}
	compiled, hit, err := s.orchestrator.Cache().Compile(s.compiler, doc)
	if err != nil {
		s.log.Error("compile failed", "doc_id", doc.ID, "error", err)
		jsonError(w, "compile failed: "+err.Error(), http.StatusInternalServerError)
		return nil, nil, false
	}
	s.log.Debug("compiled document", "doc_id", doc.ID, "cache_hit", hit)
	return doc, compiled, true
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, compiled, ok := s.loadCompiled(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{
		ID:           doc.ID,
		FullTitle:    doc.FullTitle,
		SidebarTitle: doc.SidebarTitle,
		LastEdited:   doc.LastEdited,
		Tree:         compiled.Tree,
		Outline:      compiled.Outline,
	})
}

func (s *Server) handleDocumentHTML(w http.ResponseWriter, r *http.Request) {
	doc, compiled, ok := s.loadCompiled(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := compiler.Page(&buf, doc, compiled); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleDeleteDocument removes a document and its cached render.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.repo.Delete(r.Context(), docID); err != nil {
		repoError(w, err)
		return
	}
	s.orchestrator.Cache().Invalidate(docID)
	s.log.Info("document deleted", "doc_id", docID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}
