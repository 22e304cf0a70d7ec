package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/org/vaultguard/internal/api"
	"github.com/org/vaultguard/internal/breach"
	"github.com/org/vaultguard/internal/engine"
	"github.com/org/vaultguard/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfgFile := "config.yaml"
	if v := os.Getenv("VAULTGUARD_CONFIG"); v != "" {
		cfgFile = v
	}
	cfg, found, err := loadConfig(cfgFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfgFile).Msg("failed to load config")
	}
	if !found {
		log.Warn().Str("file", cfgFile).Msg("config file not found, using defaults")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	var store storage.Backend
	if cfg.DBUrl == "" {
		log.Warn().Msg("no db_url configured, audits are kept in memory only")
		store = storage.NewMemoryBackend()
	} else {
		pg, err := storage.NewPostgresBackend(ctx, cfg.DBUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := storage.RunMigrations(cfg.DBUrl); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("migrations applied")
		store = pg
	}
	defer store.Close()

	var checker breach.Checker = breach.Disabled{}
	var domains breach.DomainChecker
	if cfg.Breach.Enabled {
		hibp := breach.NewHIBPClient(cfg.Breach.URL, cfg.Breach.UserAgent, cfg.Breach.Timeout)
		checker = hibp
		directory := breach.NewHIBPDomainClient(cfg.Breach.DomainURL, cfg.Breach.UserAgent, cfg.Breach.APIKey, cfg.Breach.Timeout)
		domains = directory
		log.Info().
			Str("url", hibp.BaseURL()).
			Str("domain_url", directory.BaseURL()).
			Bool("api_key", cfg.Breach.APIKey != "").
			Msg("breach checking enabled")
	}
	if cfg.FingerprintSecret == "" {
		log.Warn().Msg("no fingerprint_secret configured, using a per-process key")
	}

	eng, err := engine.New(engine.Options{
		Checker:           checker,
		DomainChecker:     domains,
		CommonPasswords:   cfg.CommonPasswords,
		CriticalSites:     cfg.CriticalSites,
		FingerprintSecret: cfg.FingerprintSecret,
		Concurrency:       cfg.Breach.Concurrency,
		LookupTimeout:     cfg.Breach.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	srv := api.NewServer(eng, store, api.Config{
		ListenAddr:  cfg.ListenAddr,
		TLSCertFile: cfg.TLSCertFile,
		TLSKeyFile:  cfg.TLSKeyFile,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("server started")
	<-quit

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
