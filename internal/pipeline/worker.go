package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/doctree"
)

// Worker compiles the documents of a batch job.
type Worker struct {
	repo          content.Repository
	compiler      *compiler.Compiler
	cache         *RenderCache
	log           *slog.Logger
	maxConcurrent int
}

func NewWorker(repo content.Repository, comp *compiler.Compiler, cache *RenderCache, log *slog.Logger, maxConcurrent int) *Worker {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Worker{
		repo:          repo,
		compiler:      comp,
		cache:         cache,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

// Process runs a batch compile for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	docs, err := w.load(ctx, job, log)
	if err != nil {
		log.Error("load failed", "error", err)
		job.AddError(fmt.Sprintf("load: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}
	total := len(docs)
	if len(job.DocIDs) > 0 {
		total = len(job.DocIDs)
	}
	job.SetTotal(total)
	log.Info("loaded documents", "documents", len(docs))

	// Phase 2: Compile with bounded concurrency.
	job.SetStatus(StatusCompiling, "compiling")
	sem := make(chan struct{}, w.maxConcurrent)
	var wg sync.WaitGroup

	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(doc *doctree.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			_, cached, err := w.cache.Compile(w.compiler, doc)
			if err != nil {
				log.Error("compile failed", "doc_id", doc.ID, "error", err)
				job.AddError(err.Error())
				job.IncrFailed()
				return
			}
			job.IncrCompiled(cached)
		}(doc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("job interrupted", "error", err)
		job.AddError(fmt.Sprintf("interrupted: %s", err))
		job.SetStatus(StatusFailed, "compiling")
		return
	}

	p := job.Snapshot().Progress
	switch {
	case p.Failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case p.Compiled == 0:
		job.SetStatus(StatusFailed, "compiling")
	default:
		job.SetStatus(StatusPartial, "done")
	}
	log.Info("job finished", "compiled", p.Compiled, "cached", p.Cached, "failed", p.Failed)
}

// load resolves the job's documents. Missing ids are recorded as failures
// instead of failing the whole job.
func (w *Worker) load(ctx context.Context, job *Job, log *slog.Logger) ([]*doctree.Document, error) {
	onRetry := func(attempt int, err error) {
		log.Warn("retryable repository error", "attempt", attempt, "error", err)
	}

	if len(job.DocIDs) == 0 {
		all, err := withRetry(ctx, onRetry, func() ([]doctree.Document, error) {
			return w.repo.List(ctx)
		})
		if err != nil {
			return nil, err
		}
		visible := content.FilterByView(all, job.View)
		docs := make([]*doctree.Document, len(visible))
		for i := range visible {
			docs[i] = &visible[i]
		}
		return docs, nil
	}

	var docs []*doctree.Document
	for _, id := range job.DocIDs {
		doc, err := withRetry(ctx, onRetry, func() (*doctree.Document, error) {
			return w.repo.Get(ctx, id)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("document unavailable", "doc_id", id, "error", err)
			job.AddError(err.Error())
			job.IncrFailed()
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("none of %d requested documents could be loaded", len(job.DocIDs))
	}
	return docs, nil
}
