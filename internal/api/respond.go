package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/normcontrol/internal/pipeline"
	"github.com/dgallion1/normcontrol/internal/report"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/service"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// errorStatus maps operation failures to client errors and everything
// else to 500.
func errorStatus(err error) int {
	var opErr *rules.OperationError
	switch {
	case errors.As(err, &opErr),
		errors.Is(err, rules.ErrUnknownDocType),
		errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeReports renders reports in the format named by ?format=.
func (s *Server) writeReports(w http.ResponseWriter, r *http.Request, reports ...*service.Report) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if err := report.Render(w, format, reports...); err != nil {
		s.log.Error("render report", "format", format, "error", err)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
