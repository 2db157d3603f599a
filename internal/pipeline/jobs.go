package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/service"
)

// JobStatus represents the state of a batch validation job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusChecking  JobStatus = "checking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of one batch of documents checked against one
// document type.
type Job struct {
	mu sync.Mutex

	ID      string        `json:"job_id"`
	DocType rules.DocType `json:"doc_type"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	docs    []service.Document
	reports []*service.Report
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments int      `json:"total_documents"`
	Checked        int      `json:"checked"`
	Valid          int      `json:"valid"`
	Invalid        int      `json:"invalid"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job for docs.
func NewJob(dt rules.DocType, docs []service.Document) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocType:   dt,
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalDocuments: len(docs)},
		CreatedAt: now,
		UpdatedAt: now,
		docs:      docs,
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
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

// AddError records a document that could not be checked.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.Progress.Checked++
	j.UpdatedAt = time.Now()
}

// AddReport records the report of one checked document.
func (j *Job) AddReport(r *service.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = append(j.reports, r)
	j.Progress.Checked++
	if r.Valid {
		j.Progress.Valid++
	} else {
		j.Progress.Invalid++
	}
	j.UpdatedAt = time.Now()
}

// Documents returns the documents queued for checking.
func (j *Job) Documents() []service.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.docs
}

// releaseDocuments drops the uploaded bytes once every document is checked.
func (j *Job) releaseDocuments() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.docs = nil
}

// Reports returns a copy of the reports collected so far.
func (j *Job) Reports() []*service.Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*service.Report, len(j.reports))
	copy(out, j.reports)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string            `json:"job_id"`
	DocType   rules.DocType     `json:"doc_type"`
	Status    JobStatus         `json:"status"`
	Phase     string            `json:"phase"`
	Progress  Progress          `json:"progress"`
	Reports   []*service.Report `json:"reports"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	reports := make([]*service.Report, len(j.reports))
	copy(reports, j.reports)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		DocType:   j.DocType,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		Reports:   reports,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
