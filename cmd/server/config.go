package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type breachConfig struct {
	Enabled     bool          `yaml:"enabled"`
	URL         string        `yaml:"url"`
	DomainURL   string        `yaml:"domain_url"`
	APIKey      string        `yaml:"api_key"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

type config struct {
	ListenAddr        string       `yaml:"listen_addr"`
	TLSCertFile       string       `yaml:"tls_cert"`
	TLSKeyFile        string       `yaml:"tls_key"`
	DBUrl             string       `yaml:"db_url"`
	LogLevel          string       `yaml:"log_level"`
	FingerprintSecret string       `yaml:"fingerprint_secret"`
	RateLimit         int          `yaml:"rate_limit"`
	RateBurst         int          `yaml:"rate_burst"`
	CommonPasswords   []string     `yaml:"common_passwords"`
	CriticalSites     []string     `yaml:"critical_sites"`
	Breach            breachConfig `yaml:"breach"`
}

func defaultConfig() config {
	return config{
		ListenAddr: ":8300",
		LogLevel:   "info",
		RateLimit:  100,
		RateBurst:  200,
		Breach: breachConfig{
			Timeout:     5 * time.Second,
			Concurrency: 8,
		},
	}
}

// loadConfig reads path over the defaults and applies environment
// overrides. A missing file is not an error.
func loadConfig(path string) (config, bool, error) {
	cfg := defaultConfig()
	found := true
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		found = false
	case err != nil:
		return cfg, false, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, true, fmt.Errorf("parsing config: %w", err)
		}
	}

	if v := os.Getenv("VAULTGUARD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DBUrl = v
	}
	if v := os.Getenv("VAULTGUARD_FINGERPRINT_SECRET"); v != "" {
		cfg.FingerprintSecret = v
	}
	if v := os.Getenv("HIBP_API_KEY"); v != "" {
		cfg.Breach.APIKey = v
	}
	if v := os.Getenv("VAULTGUARD_BREACH_CHECK"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, found, fmt.Errorf("parsing VAULTGUARD_BREACH_CHECK: %w", err)
		}
		cfg.Breach.Enabled = enabled
	}
	return cfg, found, nil
}
