package breach

import (
	"context"
	"errors"
	"strings"

	"github.com/org/vaultguard/internal/crypto"
	"github.com/org/vaultguard/pkg/models"
)

// SourceFake names the in-memory corpus.
const SourceFake = "fake"

// Fake is a deterministic in-memory Checker keyed by fingerprint.
type Fake struct {
	counts map[string]int
	err    error
}

// NewFake returns a Fake seeded with breach counts keyed by plaintext
// password; only fingerprints are kept.
func NewFake(seed map[string]int) *Fake {
	f := &Fake{counts: make(map[string]int, len(seed))}
	for pw, n := range seed {
		f.counts[crypto.BreachFingerprint(pw)] = n
	}
	return f
}

// FailWith makes every subsequent lookup return err.
func (f *Fake) FailWith(err error) *Fake {
	f.err = err
	return f
}

// Lookup implements Checker.
func (f *Fake) Lookup(ctx context.Context, fingerprint string) (models.BreachStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.BreachStatus{}, err
	}
	if f.err != nil {
		return models.BreachStatus{}, f.err
	}
	n := f.counts[strings.ToUpper(fingerprint)]
	return models.BreachStatus{Checked: true, Breached: n > 0, Count: n, Source: SourceFake}, nil
}

// FakeDomains is an in-memory DomainChecker keyed by domain. Domains in
// Fail return an error.
type FakeDomains struct {
	Breaches map[string][]models.DomainBreach
	Fail     map[string]bool
}

// DomainBreaches implements DomainChecker.
func (f *FakeDomains) DomainBreaches(ctx context.Context, domain string) ([]models.DomainBreach, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Fail[domain] {
		return nil, errors.New("domain lookup unavailable")
	}
	return f.Breaches[domain], nil
}
