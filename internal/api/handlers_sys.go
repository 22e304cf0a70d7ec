package api

import (
	"net/http"

	"github.com/org/vaultguard/internal/storage"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// HealthHandler handles GET /v1/sys/health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	storageOK := true
	if err := s.store.Ping(r.Context()); err != nil {
		code = http.StatusServiceUnavailable
		storageOK = false
	}
	writeJSON(w, code, map[string]any{
		"status":     http.StatusText(code),
		"storage_ok": storageOK,
		"version":    Version,
	})
}

// RequestLogHandler handles GET /v1/sys/request-log
func (s *Server) RequestLogHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, since := pagination(r, 100)
	filter := storage.RequestFilter{
		Path:   r.URL.Query().Get("path"),
		Since:  since,
		Limit:  limit,
		Offset: offset,
	}

	entries, err := s.auditor.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}
