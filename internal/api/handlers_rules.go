package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/normcontrol/internal/rules"
)

func (s *Server) handleRuleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rules.RuleTypes())
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	dt, err := rules.ParseDocType(chi.URLParam(r, "docType"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := s.service.Rules().Raw(dt)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// ruleUpdate reads rule_key and new_value from the query string or form.
func ruleUpdate(r *http.Request) (key, value string, err error) {
	key = r.FormValue("rule_key")
	if key == "" {
		return "", "", fmt.Errorf("rule_key is required")
	}
	if !r.Form.Has("new_value") {
		return "", "", fmt.Errorf("new_value is required")
	}
	return key, r.FormValue("new_value"), nil
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	dt, err := rules.ParseDocType(r.FormValue("doc_type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	key, raw, err := ruleUpdate(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	val, err := s.service.Rules().Update(dt, key, raw)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Правило %s успешно обновлено", key),
		"value":   val.Any(),
	})
}

func (s *Server) handleUpdateAllRules(w http.ResponseWriter, r *http.Request) {
	key, raw, err := ruleUpdate(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, failures := s.service.Rules().UpdateAll(key, raw)
	failed := make(map[rules.DocType]string, len(failures))
	for dt, err := range failures {
		failed[dt] = err.Error()
	}
	if updated == nil {
		updated = []rules.DocType{}
	}
	code := http.StatusOK
	if len(updated) == 0 {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]any{
		"updated": updated,
		"failed":  failed,
	})
}
