// Package risk turns a password entry and its external signals into an
// entry-level risk assessment.
package risk

import (
	"strings"
	"time"

	"github.com/org/vaultguard/internal/strength"
	"github.com/org/vaultguard/pkg/models"
)

// Staleness thresholds in days.
const (
	StaleDays     = 90
	VeryStaleDays = 180
	// UnknownAge is used when an entry has no last-updated timestamp.
	UnknownAge = 999
)

// Risk weights added on top of the inverted strength score.
const (
	breachWeight    = 40
	staleWeight     = 20
	criticalWeight  = 15
	duplicateWeight = 25
)

// Recommendation messages for non-strength findings.
const (
	MsgBreached  = "Change password immediately - found in breach"
	MsgVeryStale = "Consider updating - password is very old"
	MsgStale     = "Consider updating - password is getting old"
	MsgDuplicate = "Use a unique password - this one is shared with other accounts"
)

// DefaultCriticalSites are keywords marking banking, email and major platforms.
var DefaultCriticalSites = []string{
	"bank", "paypal", "credit", "investment", "trading",
	"amazon", "apple", "google", "microsoft", "facebook",
	"email", "gmail", "outlook", "icloud", "work",
}

// CriticalSites is a keyword set matched against lowercased site names.
type CriticalSites map[string]bool

// NewCriticalSites builds a CriticalSites set from keywords.
func NewCriticalSites(keywords []string) CriticalSites {
	s := make(CriticalSites, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			s[k] = true
		}
	}
	return s
}

// Matches reports whether site contains any critical keyword.
func (c CriticalSites) Matches(site string) bool {
	site = strings.ToLower(site)
	for k := range c {
		if strings.Contains(site, k) {
			return true
		}
	}
	return false
}

// Assessor computes EntryRiskAssessments.
type Assessor struct {
	scorer *strength.Scorer
	sites  CriticalSites
	now    func() time.Time
}

// NewAssessor creates an Assessor. A nil now uses time.Now.
func NewAssessor(scorer *strength.Scorer, sites CriticalSites, now func() time.Time) *Assessor {
	if now == nil {
		now = time.Now
	}
	return &Assessor{scorer: scorer, sites: sites, now: now}
}

// Label maps an entry risk score to its label.
func Label(score int) string {
	switch {
	case score >= 80:
		return models.SeverityCritical
	case score >= 60:
		return models.SeverityHigh
	case score >= 40:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// DaysSince returns whole days between t and now, or UnknownAge for a zero t.
func DaysSince(t, now time.Time) int {
	if t.IsZero() {
		return UnknownAge
	}
	d := int(now.Sub(t).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Assess scores entry and combines it with breach and duplicate signals.
func (a *Assessor) Assess(entry models.PasswordEntry, breach models.BreachStatus, duplicate bool) models.EntryRiskAssessment {
	analysis := a.scorer.Score(entry.Password)
	return a.AssessAnalysis(entry, analysis, breach, duplicate)
}

// AssessAnalysis is Assess for an already computed strength analysis.
func (a *Assessor) AssessAnalysis(entry models.PasswordEntry, analysis models.StrengthAnalysis, breach models.BreachStatus, duplicate bool) models.EntryRiskAssessment {
	days := DaysSince(entry.LastUpdated, a.now())
	factors := models.RiskFactors{
		Weak:         analysis.Score < strength.WeakThreshold,
		Breached:     breach.IsBreached(),
		Stale:        days > StaleDays,
		CriticalSite: a.sites.Matches(entry.Site),
		Duplicate:    duplicate,
	}

	score := clamp(100 - analysis.Score)
	if factors.Breached {
		score += breachWeight
	}
	if factors.Stale {
		score += staleWeight
	}
	if factors.CriticalSite {
		score += criticalWeight
	}
	if factors.Duplicate {
		score += duplicateWeight
	}
	score = clamp(score)

	res := models.EntryRiskAssessment{
		EntryID:         entry.EntryID(),
		Site:            entry.Site,
		RiskScore:       score,
		RiskLabel:       Label(score),
		Factors:         factors,
		StrengthScore:   analysis.Score,
		StrengthLabel:   analysis.Label,
		DaysSinceUpdate: days,
		BreachChecked:   breach.Checked,
	}
	if factors.Breached {
		res.BreachCount = breach.Count
	}
	res.Recommendations = recommendations(analysis, factors, days)
	return res
}

func recommendations(analysis models.StrengthAnalysis, f models.RiskFactors, days int) []models.Recommendation {
	recs := strength.Recommendations(analysis)
	if f.Breached {
		recs = append(recs, models.Recommendation{Category: models.CategoryBreach, Severity: models.SeverityCritical, Message: MsgBreached})
	}
	switch {
	case days > VeryStaleDays:
		recs = append(recs, models.Recommendation{Category: models.CategoryStaleness, Severity: models.SeverityMedium, Message: MsgVeryStale})
	case days > StaleDays:
		recs = append(recs, models.Recommendation{Category: models.CategoryStaleness, Severity: models.SeverityLow, Message: MsgStale})
	}
	if f.Duplicate {
		recs = append(recs, models.Recommendation{Category: models.CategoryDuplicate, Severity: models.SeverityMedium, Message: MsgDuplicate})
	}
	return dedupe(recs)
}

func dedupe(recs []models.Recommendation) []models.Recommendation {
	seen := make(map[string]bool, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if seen[r.Message] {
			continue
		}
		seen[r.Message] = true
		out = append(out, r)
	}
	return out
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
