package api

import (
	"errors"
	"net/http"

	"github.com/org/vaultguard/internal/engine"
)

// DomainCheckHandler handles POST /v1/domains/check. Site names and URLs
// are accepted; values that are not domains are skipped.
func (s *Server) DomainCheckHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domains []string `json:"domains"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Domains) == 0 {
		writeError(w, http.StatusBadRequest, "domains are required")
		return
	}

	report, err := s.engine.CheckDomains(r.Context(), req.Domains)
	if err != nil {
		if errors.Is(err, engine.ErrTooManyDomains) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	setMeta(r.Context(), "domains", report.DomainsChecked)
	setMeta(r.Context(), "breached_domains", report.DomainsWithBreaches)
	writeJSON(w, http.StatusOK, map[string]any{"data": report})
}
