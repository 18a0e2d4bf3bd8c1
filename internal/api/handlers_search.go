package api

import (
	"net/http"
	"strconv"

	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/search"
)

const defaultSearchLimit = 20

// handleSearch runs a keyword query over the sections of every document
// visible under the requested view.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(search.Terms(q)) == 0 {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	docs, err := s.repo.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	view := content.ResolveView(docs, s.requestView(r))

	ix := search.NewIndex()
	cache := s.orchestrator.Cache()
	for _, doc := range content.FilterByView(docs, view) {
		compiled, _, err := cache.Compile(s.compiler, &doc)
		if err != nil {
			s.log.Warn("skipping document in search", "doc_id", doc.ID, "error", err)
			continue
		}
		ix.Add(search.Sections(&doc, compiled, search.DefaultConfig())...)
	}

	hits := ix.Search(q, limit)
	if hits == nil {
		hits = []search.Hit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query": q,
		"view":  view,
		"hits":  hits,
	})
}
