package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/markweave/internal/api"
	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/config"
	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/pipeline"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the content repository.
	var repo content.Repository
	var closeRepo func()
	if cfg.ContentURL != "" {
		c := content.NewClient(cfg.ContentURL, cfg.ContentAPIKey)
		repo, closeRepo = c, c.Close
		log.Info("using remote content store", "url", cfg.ContentURL)
	} else {
		repo, closeRepo = content.NewDirStore(cfg.ContentDir), func() {}
		log.Info("using content directory", "dir", cfg.ContentDir)
	}

	// Initialize pipeline.
	comp := compiler.New()
	orch := pipeline.NewOrchestrator(cfg, repo, comp, pipeline.NewRenderCache(cfg.CacheTTL), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, repo, comp, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. Drain HTTP first so no handler submits to a
	// stopped pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		closeRepo()
	}()

	log.Info("starting markweave", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
