// Package service connects rule loading, parsing and checking for the
// HTTP and CLI adapters.
package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/dgallion1/normcontrol/internal/checker"
	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/parser"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/violation"
)

// Messages of checks that could not run on the input.
const (
	MsgUnreadable = "Ошибка при открытии документа: %v"
	MsgEmpty      = "Документ пуст"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is one uploaded file. Sty is an optional LaTeX style file.
type Document struct {
	Filename string
	Data     []byte
	Sty      []byte
}

// Report is the result envelope returned to clients.
type Report struct {
	ID          string         `json:"id"`
	DocType     rules.DocType  `json:"doc_type"`
	Format      doctree.Format `json:"format"`
	Filename    string         `json:"filename"`
	Fingerprint string         `json:"fingerprint"`
	CheckedAt   time.Time      `json:"checked_at"`
	DurationMs  int64          `json:"duration_ms"`
	checker.Result
}

// Options configures a Service.
type Options struct {
	// ReferenceSty is the path of the reference style file; empty disables
	// style-file conformance.
	ReferenceSty string
	// Dedup suppresses repeated identical violations.
	Dedup       bool
	StatsWindow time.Duration
}

// Service runs document checks. It is safe for concurrent use; every
// check builds its own model and violation list.
type Service struct {
	store        *rules.Store
	referenceSty []byte
	dedup        bool
	stats        *CheckStats
	log          *slog.Logger
}

// New builds a Service. The reference style file is read once here.
func New(store *rules.Store, opts Options, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		store: store,
		dedup: opts.Dedup,
		stats: NewCheckStats(opts.StatsWindow),
		log:   log.With("component", "service"),
	}
	if opts.ReferenceSty != "" {
		data, err := os.ReadFile(opts.ReferenceSty)
		if err != nil {
			return nil, fmt.Errorf("read reference style: %w", err)
		}
		s.referenceSty = data
	}
	return s, nil
}

// Rules returns the rule store.
func (s *Service) Rules() *rules.Store { return s.store }

// Stats returns the check latency tracker.
func (s *Service) Stats() *CheckStats { return s.stats }

// Check validates doc against the rules of dt. Rule loading failures and
// unsupported formats are returned as errors; an unreadable document is a
// failed Report.
func (s *Service) Check(ctx context.Context, dt rules.DocType, doc Document) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := parser.ForFile(doc.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, doc.Filename)
	}
	rs, err := s.store.Load(dt)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	start := time.Now()
	sum := blake3.Sum256(doc.Data)
	report := &Report{
		ID:          uuid.NewString(),
		DocType:     dt,
		Format:      parser.SupportedExtensions[extOf(doc.Filename)],
		Filename:    doc.Filename,
		Fingerprint: hex.EncodeToString(sum[:]),
		CheckedAt:   start.UTC(),
	}
	log := s.log.With("check_id", report.ID, "doc_type", dt, "format", report.Format)

	report.Result = s.run(p, rs, doc, log)
	report.DurationMs = time.Since(start).Milliseconds()
	s.stats.Record(report.Format, report.DurationMs, report.Valid)

	log.Info("document checked",
		"file", doc.Filename,
		"valid", report.Valid,
		"violations", len(report.Errors),
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

func (s *Service) run(p parser.Parser, rs *rules.RuleSet, doc Document, log *slog.Logger) checker.Result {
	if len(bytes.TrimSpace(doc.Data)) == 0 {
		return checker.Failure(MsgEmpty)
	}
	errs := violation.New(violation.WithDedup(s.dedup), violation.WithIgnored(rs.IgnoredErrors))
	m, err := p.Parse(doc.Data, doc.Filename, errs)
	if err != nil {
		log.Warn("document unreadable", "error", err)
		return checker.Failure(fmt.Sprintf(MsgUnreadable, err))
	}
	if m.Format == doctree.FormatDOCX && m.Tree != nil && len(m.Tree.Children) == 0 {
		return checker.Failure(MsgEmpty)
	}
	return checker.New(rs, log).Check(checker.Input{
		Model:        m,
		Errors:       errs,
		Sty:          doc.Sty,
		ReferenceSty: s.referenceSty,
	})
}

func extOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
