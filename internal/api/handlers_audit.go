package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/org/vaultguard/internal/engine"
	"github.com/org/vaultguard/internal/report"
	"github.com/org/vaultguard/internal/storage"
	"github.com/org/vaultguard/pkg/models"
)

// historyDepth is how many earlier assessments feed a digest trend.
const historyDepth = 10

// AuditCreateHandler handles POST /v1/audits
func (s *Server) AuditCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entries []models.PasswordEntry `json:"entries"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	setMeta(r.Context(), "entries", len(req.Entries))

	rec, err := s.engine.Audit(r.Context(), req.Entries)
	if err != nil {
		if errors.Is(err, engine.ErrNoEntries) || errors.Is(err, engine.ErrTooManyEntries) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.SaveAudit(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist audit")
		return
	}
	auditsTotal.WithLabelValues(rec.Assessment.RiskLabel).Inc()
	if n, err := s.store.CountAudits(r.Context()); err == nil {
		auditsStored.Set(float64(n))
	} else {
		log.Warn().Err(err).Msg("counting audits")
	}
	setMeta(r.Context(), "audit_id", rec.ID.String())

	writeJSON(w, http.StatusCreated, map[string]any{"data": rec})
}

// AuditListHandler handles GET /v1/audits
func (s *Server) AuditListHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, since := pagination(r, 20)
	filter := storage.HistoryFilter{
		Since:  since,
		Label:  r.URL.Query().Get("label"),
		Limit:  limit,
		Offset: offset,
	}

	audits, err := s.store.ListAudits(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// listings are newest first; trends read oldest first
	scores := make([]int, len(audits))
	for i, a := range audits {
		scores[len(audits)-1-i] = a.SecurityScore
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  audits,
		"trend": report.Trend(scores),
	})
}

// AuditGetHandler handles GET /v1/audits/{id}
func (s *Server) AuditGetHandler(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadAudit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

// AuditReportHandler handles GET /v1/audits/{id}/report?format=&render=&charts=
func (s *Server) AuditReportHandler(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadAudit(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatExecutive
	}
	charts, err := queryBool(r, "charts")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := report.Options{IncludeCharts: charts}
	if charts {
		opts.History, err = s.store.AssessmentHistory(r.Context(), rec.CreatedAt, historyDepth)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	rep, err := report.FormatWith(rec.Assessment, rec.Entries, format, opts)
	if err != nil {
		if errors.Is(err, report.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("render") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := report.Render(w, rep); err != nil {
			log.Warn().Err(err).Msg("rendering report")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rep})
}

// AuditDigestHandler handles GET /v1/audits/{id}/digest?period=&time_limited=&advanced=
func (s *Server) AuditDigestHandler(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadAudit(w, r)
	if !ok {
		return
	}
	var opts report.DigestOptions
	var err error
	if opts.TimeLimited, err = queryBool(r, "time_limited"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Advanced, err = queryBool(r, "advanced"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period := r.URL.Query().Get("period")
	switch period {
	case "":
		period = report.PeriodMonthly
	case report.PeriodWeekly, report.PeriodMonthly, report.PeriodQuarterly:
	default:
		writeError(w, http.StatusBadRequest, "unsupported digest period: "+period)
		return
	}

	history, err := s.store.AssessmentHistory(r.Context(), rec.CreatedAt, historyDepth)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"plan":   report.Digest(rec.Assessment, rec.Entries, opts),
			"digest": report.Summarize(rec.Assessment, history, period),
		},
	})
}

func (s *Server) loadAudit(w http.ResponseWriter, r *http.Request) (*models.AuditRecord, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit id")
		return nil, false
	}
	rec, err := s.store.GetAudit(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "audit not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rec, true
}
