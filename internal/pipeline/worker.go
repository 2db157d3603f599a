package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/service"
)

// DocumentChecker checks one document. *service.Service implements it.
type DocumentChecker interface {
	Check(ctx context.Context, dt rules.DocType, doc service.Document) (*service.Report, error)
}

// Worker processes a single batch job.
type Worker struct {
	checker DocumentChecker
	log     *slog.Logger

	maxConcurrentChecks int
}

func NewWorker(checker DocumentChecker, log *slog.Logger, maxChecks int) *Worker {
	if maxChecks < 1 {
		maxChecks = 1
	}
	return &Worker{
		checker:             checker,
		log:                 log,
		maxConcurrentChecks: maxChecks,
	}
}

// Process checks every document of a job and records the reports.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_type", job.DocType)
	docs := job.Documents()

	job.SetStatus(StatusChecking, "checking")
	if len(docs) == 0 {
		job.AddError("no documents")
		job.SetStatus(StatusFailed, "checking")
		return
	}

	type checkResult struct {
		report *service.Report
		err    error
		name   string
	}
	results := make(chan checkResult, len(docs))
	sem := make(chan struct{}, w.maxConcurrentChecks)

	for _, doc := range docs {
		sem <- struct{}{}
		go func(doc service.Document) {
			defer func() { <-sem }()
			r, err := w.checker.Check(ctx, job.DocType, doc)
			results <- checkResult{report: r, err: err, name: doc.Filename}
		}(doc)
	}

	failed := 0
	for range docs {
		r := <-results
		if r.err != nil {
			log.Error("check failed", "file", r.name, "error", r.err)
			job.AddError(fmt.Sprintf("%s: %s", r.name, r.err))
			failed++
			continue
		}
		job.AddReport(r.report)
	}
	job.releaseDocuments()

	log.Info("batch complete", "documents", len(docs), "failed", failed)

	switch {
	case failed == len(docs):
		job.SetStatus(StatusFailed, "done")
	case failed > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}
