package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/normcontrol/internal/parser"
	"github.com/dgallion1/normcontrol/internal/pipeline"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/service"
)

func (s *Server) handleDocOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rules.DocTypes())
}

// parseUpload limits the body to n files plus form overhead and parses it.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, files int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*files+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// readPart reads one uploaded file, enforcing the per-file size limit.
func (s *Server) readPart(fh *multipart.FileHeader) ([]byte, int, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to open file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, 0, nil
}

// formFile returns the single file uploaded under field, or nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if fhs := r.MultipartForm.File[field]; len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

func (s *Server) check(w http.ResponseWriter, r *http.Request, dt rules.DocType, doc service.Document) {
	rep, err := s.service.Check(r.Context(), dt, doc)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	s.writeReports(w, r, rep)
}

func (s *Server) handleValidateSingle(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r, 1) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	dt, err := rules.ParseDocType(r.FormValue("doc_type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	fh := formFile(r, "file")
	if fh == nil {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	data, code, err := s.readPart(fh)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	s.check(w, r, dt, service.Document{Filename: filename, Data: data})
}

func (s *Server) handleValidateLaTeX(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r, 2) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	dt, err := rules.ParseDocType(r.FormValue("doc_type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tex := formFile(r, "tex_file")
	if tex == nil {
		jsonError(w, "tex_file is required", http.StatusBadRequest)
		return
	}
	sty := formFile(r, "sty_file")

	texName := sanitizeFilename(tex.Filename)
	if sty != nil && hasExt(texName, ".sty") && hasExt(sty.Filename, ".tex") {
		jsonError(w, "files are swapped: upload the .tex as tex_file and the .sty as sty_file", http.StatusBadRequest)
		return
	}
	if !hasExt(texName, ".tex") {
		jsonError(w, fmt.Sprintf("expected a .tex file, got %s", texName), http.StatusBadRequest)
		return
	}
	if sty != nil && !hasExt(sty.Filename, ".sty") {
		jsonError(w, fmt.Sprintf("expected a .sty file, got %s", sanitizeFilename(sty.Filename)), http.StatusBadRequest)
		return
	}

	doc := service.Document{Filename: texName}
	var code int
	if doc.Data, code, err = s.readPart(tex); err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	if sty != nil {
		if doc.Sty, code, err = s.readPart(sty); err != nil {
			jsonError(w, err.Error(), code)
			return
		}
	}
	s.check(w, r, dt, doc)
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

// handleValidateBatch queues every uploaded file of "files" as one job.
// Files the checker cannot take are reported back and left out of the job.
func (s *Server) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "batch validation unavailable", http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	dt, err := rules.ParseDocType(r.FormValue("doc_type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var docs []service.Document
	rejected := []map[string]string{}
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			rejected = append(rejected, map[string]string{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}
		data, _, err := s.readPart(fh)
		if err != nil {
			rejected = append(rejected, map[string]string{"filename": filename, "error": err.Error()})
			continue
		}
		docs = append(docs, service.Document{Filename: filename, Data: data})
	}
	if len(docs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "no supported files", "rejected": rejected})
		return
	}

	job := pipeline.NewJob(dt, docs)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"accepted": len(docs),
		"rejected": rejected,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

// handleJobStatus returns the job snapshot as JSON, or its reports in the
// format named by ?format= once the job is done.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "batch validation unavailable", http.StatusServiceUnavailable)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if f := r.URL.Query().Get("format"); f != "" && f != "json" {
		s.writeReports(w, r, snap.Reports...)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
