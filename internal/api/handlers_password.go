package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/org/vaultguard/internal/generator"
	"github.com/org/vaultguard/internal/strength"
	"github.com/org/vaultguard/pkg/models"
)

type generateRequest struct {
	models.PasswordPolicy
	Count int `json:"count"`
}

// GenerateHandler handles POST /v1/generate. Omitted policy fields take
// their defaults, so an empty object yields one 16 character password.
func (s *Server) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	req := generateRequest{PasswordPolicy: models.DefaultPolicy(), Count: 1}
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	setMeta(r.Context(), "length", req.Length)
	setMeta(r.Context(), "count", req.Count)

	passwords, err := s.engine.GenerateBatch(req.PasswordPolicy, req.Count)
	if err != nil {
		if errors.Is(err, generator.ErrInvalidPolicy) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	passwordsGenerated.Add(float64(len(passwords)))

	analysis := s.engine.Strength(passwords[0])
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"passwords": passwords,
			"policy":    req.PasswordPolicy,
			"strength":  analysis,
		},
	})
}

// StrengthHandler handles POST /v1/strength
func (s *Server) StrengthHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password    string `json:"password"`
		BreachCheck bool   `json:"breach_check"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	analysis := s.engine.Strength(req.Password)
	strengthChecks.WithLabelValues(analysis.Label).Inc()
	setMeta(r.Context(), "label", analysis.Label)

	data := map[string]any{
		"analysis":        analysis,
		"recommendations": strength.Recommendations(analysis),
	}
	if req.BreachCheck {
		data["breach"] = s.engine.CheckBreach(r.Context(), req.Password)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}
