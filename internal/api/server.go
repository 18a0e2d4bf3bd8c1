package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/config"
	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for markweave.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	repo         content.Repository
	compiler     *compiler.Compiler
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, repo content.Repository, comp *compiler.Compiler, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		repo:         repo,
		compiler:     comp,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/api/views", s.handleListViews)
	r.Get("/api/documents", s.handleListDocuments)
	r.Get("/api/documents/{docID}", s.handleGetDocument)
	r.Get("/api/documents/{docID}/html", s.handleDocumentHTML)
	r.Get("/api/search", s.handleSearch)
	r.Post("/api/compile", s.handleCompile)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/import", s.handleImport)
		r.Post("/api/compile/batch", s.handleBatchCompile)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats", s.handleStats)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
