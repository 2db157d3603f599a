package api

import (
	"net/http"
)

func (s *Server) handleCheckStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"checks": s.service.Stats().Snapshot(),
	}
	if s.orchestrator != nil {
		resp["queue_depth"] = s.orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, resp)
}
