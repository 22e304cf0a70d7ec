package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/org/vaultguard/internal/breach"
	"github.com/org/vaultguard/pkg/models"
)

var fixedNow = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, checker breach.Checker) *Engine {
	t.Helper()
	e, err := New(Options{
		Checker:           checker,
		FingerprintSecret: "engine-test",
		Concurrency:       3,
		Now:               func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func sampleVault() []models.PasswordEntry {
	return []models.PasswordEntry{
		{ID: "1", Site: "MyBank", Username: "a", Password: "password", LastUpdated: fixedNow.AddDate(0, 0, -200)},
		{ID: "2", Site: "gmail", Username: "a", Password: "Tr7#kqWmZ4!p", LastUpdated: fixedNow.AddDate(0, 0, -5)},
		{ID: "3", Site: "blog", Username: "a", Password: "Tr7#kqWmZ4!p", LastUpdated: fixedNow.AddDate(0, 0, -5)},
		{ID: "4", Site: "forum", Username: "a", Password: "Xk#9mQp2!vLz", LastUpdated: fixedNow.AddDate(0, 0, -5)},
	}
}

func TestAudit(t *testing.T) {
	e := newTestEngine(t, breach.NewFake(map[string]int{"password": 12}))
	rec, err := e.Audit(context.Background(), sampleVault())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if len(rec.Entries) != 4 {
		t.Fatalf("got %d entries", len(rec.Entries))
	}
	for i, want := range []string{"1", "2", "3", "4"} {
		if rec.Entries[i].EntryID != want {
			t.Errorf("entry %d = %s, want %s (input order)", i, rec.Entries[i].EntryID, want)
		}
	}

	bank := rec.Entries[0]
	if !bank.Factors.Breached || bank.BreachCount != 12 || bank.RiskLabel != models.SeverityCritical {
		t.Errorf("bank entry = %+v", bank)
	}
	if !rec.Entries[1].Factors.Duplicate || !rec.Entries[2].Factors.Duplicate || rec.Entries[3].Factors.Duplicate {
		t.Error("duplicate flags wrong")
	}

	va := rec.Assessment
	// 1/4 breached = 25, plus 20 for one CRITICAL breach
	if va.RiskScore != 45 || va.SecurityScore != 55 || va.RiskLabel != models.VaultRiskHigh {
		t.Errorf("vault = risk %d security %d %s", va.RiskScore, va.SecurityScore, va.RiskLabel)
	}
	if va.Metrics.DuplicateCount != 2 || va.Metrics.UncheckedCount != 0 {
		t.Errorf("metrics = %+v", va.Metrics)
	}
	if rec.ID.String() == "" || !rec.CreatedAt.Equal(fixedNow) {
		t.Errorf("record id %s created %v", rec.ID, rec.CreatedAt)
	}
}

func TestAuditBreachFailureIsUnknown(t *testing.T) {
	e := newTestEngine(t, breach.NewFake(nil).FailWith(errors.New("offline")))
	rec, err := e.Audit(context.Background(), sampleVault())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if rec.Assessment.Metrics.BreachedCount != 0 {
		t.Error("failed lookups must not count as breached")
	}
	if rec.Assessment.Metrics.UncheckedCount != 4 {
		t.Errorf("unchecked = %d, want 4", rec.Assessment.Metrics.UncheckedCount)
	}
}

func TestAuditDeterministic(t *testing.T) {
	e := newTestEngine(t, breach.NewFake(map[string]int{"password": 12}))
	a, _ := e.Audit(context.Background(), sampleVault())
	b, _ := e.Audit(context.Background(), sampleVault())
	if a.Assessment.SecurityScore != b.Assessment.SecurityScore || a.Assessment.Metrics != b.Assessment.Metrics {
		t.Error("repeated audits should agree")
	}
	if a.ID == b.ID {
		t.Error("each audit gets its own id")
	}
}

func TestAuditValidation(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Audit(context.Background(), nil); !errors.Is(err, ErrNoEntries) {
		t.Errorf("expected ErrNoEntries, got %v", err)
	}
	big := make([]models.PasswordEntry, MaxEntries+1)
	if _, err := e.Audit(context.Background(), big); !errors.Is(err, ErrTooManyEntries) {
		t.Errorf("expected ErrTooManyEntries, got %v", err)
	}
}

func TestAuditCancelled(t *testing.T) {
	e := newTestEngine(t, breach.NewFake(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Audit(ctx, sampleVault()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateAndStrength(t *testing.T) {
	e := newTestEngine(t, nil)
	pw, err := e.Generate(models.DefaultPolicy())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a := e.Strength(pw); a.Length != 16 {
		t.Errorf("length = %d", a.Length)
	}
	batch, err := e.GenerateBatch(models.DefaultPolicy(), 3)
	if err != nil || len(batch) != 3 {
		t.Errorf("GenerateBatch = %v, %v", batch, err)
	}
	if got := e.CheckBreach(context.Background(), "password"); got.Checked {
		t.Error("disabled checker should report unknown")
	}
}

func TestCheckEntryDomains(t *testing.T) {
	e, err := New(Options{
		FingerprintSecret: "engine-test",
		DomainChecker: &breach.FakeDomains{
			Breaches: map[string][]models.DomainBreach{"linkedin.com": {{Name: "LinkedIn", CompromisedAccounts: 164611595}}},
			Fail:     map[string]bool{"flaky.io": true},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entries := []models.PasswordEntry{
		{Site: "https://www.linkedin.com", Username: "a", Password: "x"},
		{Site: "MyBank", Username: "a", Password: "y"},
		{Site: "flaky.io", Username: "a", Password: "z"},
		{Site: "linkedin.com", Username: "b", Password: "w"},
	}
	report, err := e.CheckEntryDomains(context.Background(), entries)
	if err != nil {
		t.Fatalf("CheckEntryDomains: %v", err)
	}
	if report.DomainsChecked != 2 || report.DomainsWithBreaches != 1 {
		t.Fatalf("report = %+v", report)
	}
	if r := report.Results[0]; r.Domain != "linkedin.com" || !r.HasBreaches || r.Breaches[0].Name != "LinkedIn" {
		t.Errorf("linkedin = %+v", r)
	}
	if r := report.Results[1]; r.Domain != "flaky.io" || r.Checked {
		t.Errorf("failed lookup should be unknown, got %+v", r)
	}
}

func TestCheckDomainsLimits(t *testing.T) {
	e := newTestEngine(t, nil)
	domains := make([]string, breach.MaxDomains+1)
	for i := range domains {
		domains[i] = "example.com"
	}
	if _, err := e.CheckDomains(context.Background(), domains); !errors.Is(err, ErrTooManyDomains) {
		t.Errorf("expected ErrTooManyDomains, got %v", err)
	}

	report, err := e.CheckDomains(context.Background(), []string{"example.com"})
	if err != nil {
		t.Fatalf("CheckDomains: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Checked {
		t.Errorf("without a domain checker the domain should be unknown: %+v", report)
	}
}
