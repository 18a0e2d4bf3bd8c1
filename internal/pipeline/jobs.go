package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a batch compile job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusLoading   JobStatus = "loading"
	StatusCompiling JobStatus = "compiling"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of a single batch compile.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	// DocIDs lists the documents to compile. Empty means every document
	// visible under View.
	DocIDs []string `json:"doc_ids,omitempty"`
	View   string   `json:"view,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	Total    int      `json:"total"`
	Compiled int      `json:"compiled"`
	Cached   int      `json:"cached"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// NewJob returns a queued job with a fresh id.
func NewJob(docIDs []string, view string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocIDs:    docIDs,
		View:      view,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotal records how many documents the job covers.
func (j *Job) SetTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Total = n
	j.UpdatedAt = time.Now()
}

// IncrCompiled counts a finished document; cached reports a render cache hit.
func (j *Job) IncrCompiled(cached bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Compiled++
	if cached {
		j.Progress.Cached++
	}
	j.UpdatedAt = time.Now()
}

func (j *Job) IncrFailed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Failed++
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	DocIDs    []string  `json:"doc_ids,omitempty"`
	View      string    `json:"view,omitempty"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:     j.ID,
		DocIDs: append([]string(nil), j.DocIDs...),
		View:   j.View,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			Total:    j.Progress.Total,
			Compiled: j.Progress.Compiled,
			Cached:   j.Progress.Cached,
			Failed:   j.Progress.Failed,
			Errors:   errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
