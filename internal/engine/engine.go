// Package engine wires the generator, scorer, assessors and breach
// checker into one audit pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/org/vaultguard/internal/breach"
	"github.com/org/vaultguard/internal/crypto"
	"github.com/org/vaultguard/internal/generator"
	"github.com/org/vaultguard/internal/risk"
	"github.com/org/vaultguard/internal/strength"
	"github.com/org/vaultguard/internal/vault"
	"github.com/org/vaultguard/pkg/models"
)

// MaxEntries is the largest vault a single audit accepts.
const MaxEntries = 1000

var (
	// ErrNoEntries is returned when an audit is requested for an empty vault.
	ErrNoEntries = errors.New("no entries to audit")
	// ErrTooManyEntries is returned when a vault exceeds MaxEntries.
	ErrTooManyEntries = errors.New("too many entries")
	// ErrTooManyDomains is returned when a domain check exceeds breach.MaxDomains.
	ErrTooManyDomains = errors.New("too many domains")
)

// Options configures an Engine. Zero values pick defaults.
type Options struct {
	Checker           breach.Checker
	DomainChecker     breach.DomainChecker
	CommonPasswords   []string
	CriticalSites     []string
	FingerprintSecret string
	Concurrency       int
	LookupTimeout     time.Duration
	Random            crypto.RandomSource
	Now               func() time.Time
}

// Engine is the single entry point for generation, scoring and audits.
type Engine struct {
	gen           *generator.Generator
	scorer        *strength.Scorer
	assessor      *risk.Assessor
	aggregator    *vault.Aggregator
	checker       breach.Checker
	domains       breach.DomainChecker
	fingerprinter *crypto.Fingerprinter
	concurrency   int
	lookupTimeout time.Duration
}

// New builds an Engine from opts.
func New(opts Options) (*Engine, error) {
	if opts.Checker == nil {
		opts.Checker = breach.Disabled{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 5 * time.Second
	}
	if opts.Random == nil {
		opts.Random = crypto.NewSecureSource()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	common := opts.CommonPasswords
	if len(common) == 0 {
		common = strength.DefaultCommonPasswords
	}
	sites := opts.CriticalSites
	if len(sites) == 0 {
		sites = risk.DefaultCriticalSites
	}

	fp, err := crypto.NewFingerprinter(opts.FingerprintSecret)
	if err != nil {
		return nil, fmt.Errorf("creating fingerprinter: %w", err)
	}

	scorer := strength.NewScorer(strength.NewDenylist(common))
	return &Engine{
		gen:           generator.New(opts.Random),
		scorer:        scorer,
		assessor:      risk.NewAssessor(scorer, risk.NewCriticalSites(sites), opts.Now),
		aggregator:    vault.NewAggregator(opts.Now),
		checker:       opts.Checker,
		domains:       opts.DomainChecker,
		fingerprinter: fp,
		concurrency:   opts.Concurrency,
		lookupTimeout: opts.LookupTimeout,
	}, nil
}

// Generate returns one password for the policy.
func (e *Engine) Generate(p models.PasswordPolicy) (string, error) {
	return e.gen.Generate(p)
}

// GenerateBatch returns count passwords for the policy.
func (e *Engine) GenerateBatch(p models.PasswordPolicy, count int) ([]string, error) {
	return e.gen.GenerateBatch(p, count)
}

// Strength scores a single password.
func (e *Engine) Strength(pw string) models.StrengthAnalysis {
	return e.scorer.Score(pw)
}

// CheckBreach resolves the breach status of a single password.
func (e *Engine) CheckBreach(ctx context.Context, pw string) models.BreachStatus {
	return breach.Resolve(ctx, e.checker, crypto.BreachFingerprint(pw), e.lookupTimeout)
}

// CheckDomains reports the known breaches of each domain. Without a
// domain checker every domain comes back unknown.
func (e *Engine) CheckDomains(ctx context.Context, domains []string) (models.DomainReport, error) {
	if len(domains) > breach.MaxDomains {
		return models.DomainReport{}, fmt.Errorf("%w: %d > %d", ErrTooManyDomains, len(domains), breach.MaxDomains)
	}
	return breach.CheckDomains(ctx, e.domains, domains, e.lookupTimeout), nil
}

// CheckEntryDomains runs CheckDomains over the distinct site domains of a vault.
func (e *Engine) CheckEntryDomains(ctx context.Context, entries []models.PasswordEntry) (models.DomainReport, error) {
	return e.CheckDomains(ctx, breach.EntryDomains(entries))
}

// Audit assesses every entry and aggregates the results. Breach lookups
// run concurrently; results are stored by input index so the outcome does
// not depend on scheduling.
func (e *Engine) Audit(ctx context.Context, entries []models.PasswordEntry) (*models.AuditRecord, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	if len(entries) > MaxEntries {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyEntries, len(entries), MaxEntries)
	}

	dup, groups := vault.FindDuplicates(entries, e.fingerprinter)
	if len(groups) > 0 {
		log.Debug().Int("groups", len(groups)).Msg("duplicate passwords found")
	}

	results := make([]models.EntryRiskAssessment, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			status := breach.Resolve(gctx, e.checker, crypto.BreachFingerprint(entries[i].Password), e.lookupTimeout)
			results[i] = e.assessor.Assess(entries[i], status, dup[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("auditing entries: %w", err)
	}

	va := e.aggregator.Aggregate(results)
	rec := &models.AuditRecord{
		ID:         uuid.New(),
		CreatedAt:  va.Timestamp,
		Assessment: va,
		Entries:    results,
	}
	log.Info().
		Str("audit_id", rec.ID.String()).
		Int("entries", va.TotalEntries).
		Int("security_score", va.SecurityScore).
		Str("risk_label", va.RiskLabel).
		Msg("vault audit complete")
	return rec, nil
}
