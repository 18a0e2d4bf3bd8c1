package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/config"
	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/doctree"
)

func init() {
	baseDelay = time.Millisecond
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func seedStore(t *testing.T, docs ...doctree.Document) *content.DirStore {
	t.Helper()
	store := content.NewDirStore(t.TempDir())
	for i := range docs {
		if err := store.Put(context.Background(), &docs[i]); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

// flakyRepo fails the first n reads with a transient error.
type flakyRepo struct {
	content.Repository
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyRepo) Get(ctx context.Context, id string) (*doctree.Document, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.fails
	f.mu.Unlock()
	if fail {
		return nil, errors.New("connection reset")
	}
	return f.Repository.Get(ctx, id)
}

// failingConverter makes every markdown conversion fail.
type failingConverter struct{}

func (failingConverter) Convert([]byte) ([]byte, error) { return nil, errors.New("boom") }

func TestRenderCache_HashAndTTL(t *testing.T) {
	cache := NewRenderCache(50 * time.Millisecond)
	comp := compiler.New()
	doc := &doctree.Document{ID: "a", FullTitle: "A", RawText: "# Hi"}

	first, hit, err := cache.Compile(comp, doc)
	if err != nil || hit {
		t.Fatalf("expected a miss, got hit=%v err=%v", hit, err)
	}
	second, hit, err := cache.Compile(comp, doc)
	if err != nil || !hit || second != first {
		t.Fatalf("expected the cached tree, got hit=%v err=%v", hit, err)
	}

	edited := &doctree.Document{ID: "a", FullTitle: "A", RawText: "# Changed"}
	if _, hit, _ := cache.Compile(comp, edited); hit {
		t.Error("expected edited content to miss")
	}

	time.Sleep(100 * time.Millisecond)
	if _, ok := cache.Get("a", DocumentHash(edited)); ok {
		t.Error("expected expired entry to miss")
	}
	cache.Cleanup()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after cleanup, got %d", cache.Len())
	}
}

func TestRenderCache_Invalidate(t *testing.T) {
	cache := NewRenderCache(time.Hour)
	cache.Put("a", "h", &doctree.Compiled{})
	cache.Invalidate("a")
	if _, ok := cache.Get("a", "h"); ok {
		t.Error("expected invalidated entry to miss")
	}
}

func TestDocumentHash_IncludesTitle(t *testing.T) {
	a := DocumentHash(&doctree.Document{FullTitle: "One", RawText: "x"})
	b := DocumentHash(&doctree.Document{FullTitle: "Two", RawText: "x"})
	if a == b {
		t.Error("expected title to change the hash")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("connection reset"), true},
		{fmt.Errorf("get x: %w", content.ErrNotFound), false},
		{content.ValidateID("../x"), false},
		{context.Canceled, false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestBackoff_Capped(t *testing.T) {
	for attempt := range 10 {
		if d := Backoff(attempt); d <= 0 || d > 45*time.Second {
			t.Errorf("attempt %d: unexpected backoff %v", attempt, d)
		}
	}
}

func TestWorker_CompilesVisibleDocuments(t *testing.T) {
	store := seedStore(t,
		doctree.Document{ID: "a", FullTitle: "A", RawText: "[INFO]x[/INFO]"},
		doctree.Document{ID: "b", FullTitle: "B", RawText: "b", Views: []string{"ops"}},
		doctree.Document{ID: "c", FullTitle: "C", RawText: "c", Views: []string{"admin"}},
	)
	cache := NewRenderCache(time.Hour)
	w := NewWorker(store, compiler.New(), cache, discardLogger(), 2)

	job := NewJob(nil, "ops")
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Total != 1 || snap.Progress.Compiled != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if cache.Len() != 1 {
		t.Errorf("expected one cached tree, got %d", cache.Len())
	}

	again := NewJob(nil, "ops")
	w.Process(context.Background(), again)
	if p := again.Snapshot().Progress; p.Cached != 1 {
		t.Errorf("expected second run to hit the cache, got %+v", p)
	}
}

func TestWorker_PartialOnMissingDocument(t *testing.T) {
	store := seedStore(t, doctree.Document{ID: "a", RawText: "a"})
	w := NewWorker(store, compiler.New(), NewRenderCache(time.Hour), discardLogger(), 1)

	job := NewJob([]string{"a", "missing"}, "")
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("expected partial, got %q", snap.Status)
	}
	if snap.Progress.Total != 2 || snap.Progress.Compiled != 1 || snap.Progress.Failed != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 || !strings.Contains(snap.Progress.Errors[0], "missing") {
		t.Errorf("expected error naming the missing document, got %v", snap.Progress.Errors)
	}
}

func TestWorker_AllMissingFails(t *testing.T) {
	w := NewWorker(seedStore(t), compiler.New(), NewRenderCache(time.Hour), discardLogger(), 1)
	job := NewJob([]string{"nope"}, "")
	w.Process(context.Background(), job)
	if s := job.Snapshot(); s.Status != StatusFailed || s.Phase != "loading" {
		t.Errorf("expected failed in loading, got %q/%q", s.Status, s.Phase)
	}
}

func TestWorker_CompileErrorsFailJob(t *testing.T) {
	store := seedStore(t, doctree.Document{ID: "a", RawText: "a"}, doctree.Document{ID: "b", RawText: "b"})
	comp := compiler.New(compiler.WithConverter(failingConverter{}))
	w := NewWorker(store, comp, NewRenderCache(time.Hour), discardLogger(), 2)

	job := NewJob(nil, "")
	w.Process(context.Background(), job)
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Progress.Failed != 2 {
		t.Errorf("expected failed job with 2 failures, got %q %+v", snap.Status, snap.Progress)
	}
}

func TestWorker_RetriesTransientErrors(t *testing.T) {
	repo := &flakyRepo{Repository: seedStore(t, doctree.Document{ID: "a", RawText: "a"}), fails: MaxRetries - 1}
	w := NewWorker(repo, compiler.New(), NewRenderCache(time.Hour), discardLogger(), 1)

	job := NewJob([]string{"a"}, "")
	w.Process(context.Background(), job)
	if s := job.Snapshot(); s.Status != StatusCompleted {
		t.Errorf("expected completed after retries, got %q (%v)", s.Status, s.Progress.Errors)
	}
	if repo.calls != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, repo.calls)
	}
}

func TestWorker_CanceledContext(t *testing.T) {
	store := seedStore(t, doctree.Document{ID: "a", RawText: "a"})
	w := NewWorker(store, compiler.New(), NewRenderCache(time.Hour), discardLogger(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewJob(nil, "")
	w.Process(ctx, job)
	if s := job.Snapshot(); s.Status != StatusFailed {
		t.Errorf("expected failed job on canceled context, got %q", s.Status)
	}
}

func testConfig() config.Config {
	return config.Config{
		WorkerCount:          2,
		MaxQueueSize:         4,
		MaxConcurrentCompile: 2,
		JobTTL:               time.Hour,
		CacheTTL:             time.Hour,
	}
}

func waitFor(t *testing.T, job *Job, statuses ...JobStatus) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		for _, s := range statuses {
			if snap.Status == s {
				return snap
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach %v", job.ID, statuses)
	return JobSnapshot{}
}

func TestOrchestrator_SubmitAndGet(t *testing.T) {
	store := seedStore(t, doctree.Document{ID: "a", RawText: "# A"}, doctree.Document{ID: "b", RawText: "# B"})
	o := NewOrchestrator(testConfig(), store, compiler.New(), NewRenderCache(time.Hour), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob(nil, "")
	if err := o.Submit(job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("expected submitted job to be retrievable")
	}
	snap := waitFor(t, job, StatusCompleted, StatusFailed, StatusPartial)
	if snap.Status != StatusCompleted || snap.Progress.Compiled != 2 {
		t.Errorf("unexpected result %q %+v", snap.Status, snap.Progress)
	}
	if o.Cache().Len() != 2 {
		t.Errorf("expected 2 cached trees, got %d", o.Cache().Len())
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Not started, so nothing drains the queue.
	o := NewOrchestrator(cfg, seedStore(t), compiler.New(), NewRenderCache(time.Hour), discardLogger())

	if err := o.Submit(NewJob(nil, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	overflow := NewJob(nil, "")
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if s := overflow.Snapshot(); s.Status != StatusFailed || s.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %q/%q", s.Status, s.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}
