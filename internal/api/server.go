package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/normcontrol/internal/config"
	"github.com/dgallion1/normcontrol/internal/pipeline"
	"github.com/dgallion1/normcontrol/internal/service"
)

// Server is the HTTP API server for normcontrol.
type Server struct {
	router       chi.Router
	service      *service.Service
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. orch may be nil, in
// which case batch endpoints answer 503.
func NewServer(svc *service.Service, orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		service:      svc,
		orchestrator: orch,
		log:          log.With("component", "api"),
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

	// Authenticated endpoints; open when no API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/documents/options", s.handleDocOptions)
		r.Post("/api/documents/validate/single_file", s.handleValidateSingle)
		r.Post("/api/documents/validate/latex", s.handleValidateLaTeX)
		r.Post("/api/documents/validate/batch", s.handleValidateBatch)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/rules/options", s.handleRuleOptions)
		r.Post("/api/rules/update", s.handleUpdateRule)
		r.Post("/api/rules/update/all", s.handleUpdateAllRules)
		r.Get("/api/rules/{docType}", s.handleGetRules)

		r.Get("/api/stats/checks", s.handleCheckStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
