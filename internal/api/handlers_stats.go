package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":  s.orchestrator.QueueDepth(),
		"workers":      s.cfg.WorkerCount,
		"cached_trees": s.orchestrator.Cache().Len(),
		"compile":      s.orchestrator.Cache().Stats(),
	})
}
