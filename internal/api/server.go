package api

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/org/vaultguard/internal/audit"
	"github.com/org/vaultguard/internal/engine"
	"github.com/org/vaultguard/internal/storage"
	"github.com/org/vaultguard/pkg/models"
)

// Config holds server configuration.
type Config struct {
	ListenAddr  string
	TLSCertFile string
	TLSKeyFile  string
	RateLimit   int
	RateBurst   int
}

// RequestLogger is the interface the server needs from a request logger.
type RequestLogger interface {
	LogRequest(ctx context.Context, entry *models.RequestEntry)
	Query(ctx context.Context, filter storage.RequestFilter) ([]*models.RequestEntry, error)
}

// Server is the API server.
type Server struct {
	engine  *engine.Engine
	store   storage.Backend
	auditor RequestLogger
	cfg     Config
	httpSrv *http.Server
}

// NewServer creates a fully wired Server.
func NewServer(eng *engine.Engine, store storage.Backend, cfg Config) *Server {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 100
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 200
	}
	return &Server{
		engine:  eng,
		store:   store,
		auditor: audit.NewLogger(store),
		cfg:     cfg,
	}
}

// BuildRouter wires up all routes and returns a chi router.
func (s *Server) BuildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(metricsMiddleware)
	r.Use(newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst).middleware)
	r.Use(auditMiddleware(s.auditor))

	r.Handle("/metrics", MetricsHandler())

	// Sys
	r.Get("/v1/sys/health", s.HealthHandler)
	r.Get("/v1/sys/request-log", s.RequestLogHandler)

	// Passwords
	r.Post("/v1/generate", s.GenerateHandler)
	r.Post("/v1/strength", s.StrengthHandler)
	r.Post("/v1/domains/check", s.DomainCheckHandler)

	// Audits
	r.Route("/v1/audits", func(r chi.Router) {
		r.Post("/", s.AuditCreateHandler)
		r.Get("/", s.AuditListHandler)
		r.Get("/{id}", s.AuditGetHandler)
		r.Get("/{id}/report", s.AuditReportHandler)
		r.Get("/{id}/digest", s.AuditDigestHandler)
	})

	return r
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.BuildRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
		s.httpSrv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{
				tls.CurveP256,
				tls.X25519,
			},
		}
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("starting HTTPS server")
		return s.httpSrv.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	}

	log.Info().Str("addr", s.cfg.ListenAddr).Msg("starting HTTP server")
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
