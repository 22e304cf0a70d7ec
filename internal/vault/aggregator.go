// Package vault rolls entry risk assessments up into a vault assessment.
package vault

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/org/vaultguard/internal/risk"
	"github.com/org/vaultguard/pkg/models"
)

// MaxPriorityActions caps the prioritized action list.
const MaxPriorityActions = 5

// maxBreachActions caps the per-entry breach actions.
const maxBreachActions = 3

// Standing actions appended after entry-specific ones.
const (
	ActionMFA    = "Enable two-factor authentication where available"
	ActionReview = "Schedule regular security reviews (monthly)"
)

// Aggregator builds VaultAssessments.
type Aggregator struct {
	now func() time.Time
}

// NewAggregator creates an Aggregator. A nil now uses time.Now.
func NewAggregator(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now}
}

// Label maps a vault security score to its label. Note the scale runs on
// security, so a high score is LOW risk.
func Label(security int) string {
	switch {
	case security >= 80:
		return models.VaultRiskLow
	case security >= 60:
		return models.VaultRiskModerate
	case security >= 40:
		return models.VaultRiskHigh
	default:
		return models.VaultRiskCritical
	}
}

// ReviewInterval returns the time until the next review for a vault label.
func ReviewInterval(label string) time.Duration {
	day := 24 * time.Hour
	switch label {
	case models.VaultRiskCritical:
		return 7 * day
	case models.VaultRiskHigh:
		return 14 * day
	case models.VaultRiskModerate:
		return 30 * day
	default:
		return 90 * day
	}
}

// BreachSeverity classifies a breach by how often the password was seen.
func BreachSeverity(count int) string {
	switch {
	case count > 10000:
		return models.SeverityCritical
	case count > 1000:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

// Aggregate combines entry assessments into a vault assessment. Entry
// collections keep input order; every total is order independent.
func (a *Aggregator) Aggregate(entries []models.EntryRiskAssessment) models.VaultAssessment {
	va := models.VaultAssessment{
		Timestamp:        a.now().UTC(),
		TotalEntries:     len(entries),
		WeakEntries:      []models.EntryRef{},
		BreachedEntries:  []models.EntryRef{},
		DuplicateEntries: []models.EntryRef{},
		StaleEntries:     []models.EntryRef{},
	}

	var criticalBreaches, highBreaches int
	for _, e := range entries {
		f := e.Factors
		if f.Weak {
			va.WeakEntries = append(va.WeakEntries, models.EntryRef{EntryID: e.EntryID, Site: e.Site, Severity: e.RiskLabel, Detail: e.StrengthScore})
		}
		if f.Breached {
			va.BreachedEntries = append(va.BreachedEntries, models.EntryRef{EntryID: e.EntryID, Site: e.Site, Severity: BreachSeverity(e.BreachCount), Detail: e.BreachCount})
			switch e.RiskLabel {
			case models.SeverityCritical:
				criticalBreaches++
			case models.SeverityHigh:
				highBreaches++
			}
		}
		if f.Duplicate {
			va.DuplicateEntries = append(va.DuplicateEntries, models.EntryRef{EntryID: e.EntryID, Site: e.Site, Severity: models.SeverityMedium})
		}
		if f.Stale {
			va.StaleEntries = append(va.StaleEntries, models.EntryRef{EntryID: e.EntryID, Site: e.Site, Severity: models.SeverityLow, Detail: e.DaysSinceUpdate})
		}
	}

	if n := len(entries); n > 0 {
		va.BreachRisk = float64(len(va.BreachedEntries))/float64(n)*100 +
			float64(20*criticalBreaches+10*highBreaches)
	}
	va.RiskScore = clamp(int(math.Round(va.BreachRisk)))
	va.SecurityScore = 100 - va.RiskScore
	va.RiskLabel = Label(va.SecurityScore)
	va.NextReviewDate = va.Timestamp.Add(ReviewInterval(va.RiskLabel))
	va.Metrics = metrics(entries, &va)
	va.PriorityActions = priorityActions(va.BreachedEntries, len(va.WeakEntries))
	return va
}

func metrics(entries []models.EntryRiskAssessment, va *models.VaultAssessment) models.SecurityMetrics {
	m := models.SecurityMetrics{
		TotalEntries:   len(entries),
		WeakCount:      len(va.WeakEntries),
		BreachedCount:  len(va.BreachedEntries),
		DuplicateCount: len(va.DuplicateEntries),
		StaleCount:     len(va.StaleEntries),
	}
	if len(entries) == 0 {
		return m
	}

	var ageSum, aged, strengthSum int
	for _, e := range entries {
		if !e.BreachChecked {
			m.UncheckedCount++
		}
		if e.RiskLabel == models.SeverityCritical {
			m.CriticalIssueCount++
		}
		strengthSum += e.StrengthScore
		// undated entries stay out of the average age
		if e.DaysSinceUpdate < risk.UnknownAge {
			ageSum += e.DaysSinceUpdate
			aged++
		}
	}

	total := float64(len(entries))
	m.WeakPercentage = percent(m.WeakCount, total)
	m.BreachedPercentage = percent(m.BreachedCount, total)
	m.DuplicatePercentage = percent(m.DuplicateCount, total)
	m.StalePercentage = percent(m.StaleCount, total)
	m.StrongPercentage = percent(len(entries)-m.WeakCount, total)
	m.AverageStrengthScore = round1(float64(strengthSum) / total)
	if aged > 0 {
		m.AveragePasswordAge = round1(float64(ageSum) / float64(aged))
	}
	return m
}

func percent(n int, total float64) float64 {
	return round1(float64(n) / total * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func priorityActions(breached []models.EntryRef, weak int) []models.Recommendation {
	sorted := make([]models.EntryRef, len(breached))
	copy(sorted, breached)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Detail != sorted[j].Detail {
			return sorted[i].Detail > sorted[j].Detail
		}
		return sorted[i].EntryID < sorted[j].EntryID
	})
	remaining := 0
	if len(sorted) > maxBreachActions {
		remaining = len(sorted) - maxBreachActions
		sorted = sorted[:maxBreachActions]
	}

	var actions []models.Recommendation
	for _, ref := range sorted {
		actions = append(actions, models.Recommendation{
			Category: models.CategoryBreach,
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Change password for %s (seen %d times in breaches)", ref.Site, ref.Detail),
		})
	}
	if remaining > 0 {
		actions = append(actions, models.Recommendation{
			Category: models.CategoryBreach,
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("Review and update %d remaining compromised %s", remaining, plural(remaining, "password")),
		})
	}
	if weak > 0 {
		actions = append(actions, models.Recommendation{
			Category: models.CategoryWeak,
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("Strengthen %d weak %s", weak, plural(weak, "password")),
		})
	}
	actions = append(actions,
		models.Recommendation{Category: models.CategoryMFA, Severity: models.SeverityMedium, Message: ActionMFA},
		models.Recommendation{Category: models.CategoryReview, Severity: models.SeverityLow, Message: ActionReview},
	)
	if len(actions) > MaxPriorityActions {
		actions = actions[:MaxPriorityActions]
	}
	return actions
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
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
